package models

// LifecycleOperation names the two directions a record can move.
type LifecycleOperation string

const (
	OperationArchive LifecycleOperation = "archive"
	OperationRestore LifecycleOperation = "restore"
)

// RecordState says which collection currently holds a record. State is never
// stored on the record itself.
type RecordState string

const (
	StateActive   RecordState = "active"
	StateArchived RecordState = "archived"
)

// TransitionOutcome labels how an archive or restore attempt ended.
type TransitionOutcome string

const (
	TransitionCompleted          TransitionOutcome = "COMPLETED"
	TransitionPartiallyCompleted TransitionOutcome = "PARTIALLY_COMPLETED"
	TransitionFailed             TransitionOutcome = "FAILED"
)

// TransitionResult reports the observable outcome of a lifecycle move.
//
// PartiallyCompleted means the destination copy was written but the source
// copy could not be confirmed deleted: the record may temporarily exist in
// both collections and DuplicateRisk is set. Data was not lost.
type TransitionResult struct {
	Outcome       TransitionOutcome
	Operation     LifecycleOperation
	Kind          RecordKind
	SourceID      string
	NewID         string
	DuplicateRisk bool
	Warning       string
}
