package httpapi

const (
	ErrInvalidJSON       = "invalid json"
	ErrDependency        = "dependency error"
	ErrCustomerNotFound  = "customer not found"
	ErrMissingCustomerID = "missing customer id"
	ErrNoRecordStore     = "customer lookup not configured"
)
