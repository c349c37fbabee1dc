package service

// Progress receives coarse milestones while a trace runs. The CLI renders
// them as console output; other callers leave it nil and the service falls
// back to a no-op sink.
type Progress interface {
	// HistoryFetched reports the signature count retrieved for one address.
	HistoryFetched(address string, signatures int)

	// DetailsStarted reports the unique signature count about to be fetched.
	DetailsStarted(total int)

	// DetailsProcessed reports retrieval progress, first with 0 and then
	// after every hundred signatures.
	DetailsProcessed(done int)

	// GraphStarted fires before graph construction begins.
	GraphStarted()

	// GraphBuilt reports the node count of the finished graph.
	GraphBuilt(nodes int)

	// SearchStarted fires before path search begins.
	SearchStarted()
}

type noopProgress struct{}

func (noopProgress) HistoryFetched(string, int) {}
func (noopProgress) DetailsStarted(int)         {}
func (noopProgress) DetailsProcessed(int)       {}
func (noopProgress) GraphStarted()              {}
func (noopProgress) GraphBuilt(int)             {}
func (noopProgress) SearchStarted()             {}
