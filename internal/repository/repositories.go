package repository

// Repositories is a container for all repository instances.
type Repositories struct {
	Record *RecordRepository
}

// NewRepositories constructs the repository container.
func NewRepositories() *Repositories {
	return &Repositories{
		Record: NewRecordRepository(),
	}
}
