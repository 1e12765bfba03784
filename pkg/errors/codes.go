package errors

// -----------------------------------------------------------------------------
// Configuration Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigParseFailed indicates the configuration file is not valid YAML.
	ErrConfigParseFailed = "CONFIG_PARSE_FAILED"

	// ErrConfigInvalid indicates configuration values are invalid.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigInitFailed indicates the config file or directory could not be created.
	ErrConfigInitFailed = "CONFIG_INIT_FAILED"

	// ErrConfigReadFailed indicates the config file exists but could not be read.
	ErrConfigReadFailed = "CONFIG_READ_FAILED"

	// ErrConfigWriteFailed indicates the config file could not be written.
	ErrConfigWriteFailed = "CONFIG_WRITE_FAILED"

	// ErrConfigEnvInvalid indicates a HOLO_* environment override did not parse.
	ErrConfigEnvInvalid = "CONFIG_ENV_INVALID"
)

// -----------------------------------------------------------------------------
// Entity and Population Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrEntityNotFound indicates no live entity carries the requested id.
	// Ids survive compaction but collected entities are gone for good.
	ErrEntityNotFound = "ENTITY_NOT_FOUND"

	// ErrPopulationInvalidCount indicates a negative seed count.
	ErrPopulationInvalidCount = "POPULATION_INVALID_COUNT"
)

// -----------------------------------------------------------------------------
// Task and Vocabulary Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrTaskInvalidVector indicates the task vector was never embedded.
	ErrTaskInvalidVector = "TASK_INVALID_VECTOR"

	// ErrVocabEmptySymbol indicates an empty symbol name.
	ErrVocabEmptySymbol = "VOCAB_EMPTY_SYMBOL"

	// ErrVocabUnknownSymbol indicates a symbol that is not in the registry.
	ErrVocabUnknownSymbol = "VOCAB_UNKNOWN_SYMBOL"
)

// -----------------------------------------------------------------------------
// Command Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrCommandNotFound indicates an unknown shell command.
	ErrCommandNotFound = "COMMAND_NOT_FOUND"

	// ErrCommandMissingArgs indicates required arguments were not provided.
	ErrCommandMissingArgs = "COMMAND_MISSING_ARGS"

	// ErrCommandInvalidArg indicates an argument could not be parsed.
	ErrCommandInvalidArg = "COMMAND_INVALID_ARG"
)

// -----------------------------------------------------------------------------
// Validation Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrValidationRequired indicates a required field is missing.
	ErrValidationRequired = "VALIDATION_REQUIRED"

	// ErrValidationInvalidValue indicates a field has an invalid value.
	ErrValidationInvalidValue = "VALIDATION_INVALID_VALUE"

	// ErrValidationOutOfRange indicates a numeric value is outside its bounds.
	ErrValidationOutOfRange = "VALIDATION_OUT_OF_RANGE"
)

// -----------------------------------------------------------------------------
// Network Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrNetworkBindFailed indicates the API server could not listen.
	ErrNetworkBindFailed = "NETWORK_BIND_FAILED"

	// ErrNetworkBadRequest indicates a malformed API request body.
	ErrNetworkBadRequest = "NETWORK_BAD_REQUEST"

	// ErrNetworkUnreachable indicates a remote kernel could not be contacted.
	ErrNetworkUnreachable = "NETWORK_UNREACHABLE"
)

// -----------------------------------------------------------------------------
// IO and Export Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrIOFileNotFound indicates a file does not exist.
	ErrIOFileNotFound = "IO_FILE_NOT_FOUND"

	// ErrIOPermissionDenied indicates a permission failure.
	ErrIOPermissionDenied = "IO_PERMISSION_DENIED"

	// ErrExportFailed indicates a snapshot export failed.
	ErrExportFailed = "EXPORT_FAILED"

	// ErrExportNoData indicates there were no entities to export.
	ErrExportNoData = "EXPORT_NO_DATA"
)

// -----------------------------------------------------------------------------
// Internal Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrInternalPanic indicates a recovered panic.
	ErrInternalPanic = "INTERNAL_PANIC"
)
