package apperr

// Kind classifies an error for the caller. It is the only classification
// that crosses the process boundary.
type Kind string

const (
	KindDatabase        Kind = "Database"
	KindValidation      Kind = "Validation"
	KindIo              Kind = "Io"
	KindNotFound        Kind = "NotFound"
	KindNetwork         Kind = "Network"
	KindAuthentication  Kind = "Authentication"
	KindPermission      Kind = "Permission"
	KindExternalService Kind = "ExternalService"
	KindIDGeneration    Kind = "IdGeneration"
	KindTimeUtils       Kind = "TimeUtils"
	KindUnexpected      Kind = "Unexpected"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindDatabase,
	KindValidation,
	KindIo,
	KindNotFound,
	KindNetwork,
	KindAuthentication,
	KindPermission,
	KindExternalService,
	KindIDGeneration,
	KindTimeUtils,
	KindUnexpected,
}
