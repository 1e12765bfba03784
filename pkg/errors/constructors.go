package errors

import "fmt"

// -----------------------------------------------------------------------------
// Category Constructors
// -----------------------------------------------------------------------------
// These attach registry suggestions for the code automatically.

// Config creates a configuration error.
func Config(code, message string) *HoloError {
	return AttachSuggestions(New(code, CategoryConfig, message))
}

// Configf creates a configuration error with a formatted message.
func Configf(code, format string, args ...interface{}) *HoloError {
	return Config(code, fmt.Sprintf(format, args...))
}

// ConfigWrap wraps an error as a configuration error.
func ConfigWrap(cause error, code, message string) *HoloError {
	return AttachSuggestions(Wrap(cause, code, CategoryConfig, message))
}

// Entity creates an entity or population error.
func Entity(code, message string) *HoloError {
	return AttachSuggestions(New(code, CategoryEntity, message))
}

// Task creates a task assignment error.
func Task(code, message string) *HoloError {
	return AttachSuggestions(New(code, CategoryTask, message))
}

// Vocabulary creates a symbol registry error.
func Vocabulary(code, message string) *HoloError {
	return AttachSuggestions(New(code, CategoryVocabulary, message))
}

// Command creates a shell command error.
func Command(code, message string) *HoloError {
	return AttachSuggestions(New(code, CategoryCommand, message))
}

// Commandf creates a shell command error with a formatted message.
func Commandf(code, format string, args ...interface{}) *HoloError {
	return Command(code, fmt.Sprintf(format, args...))
}

// Validationf creates a validation error with a formatted message.
func Validationf(code, format string, args ...interface{}) *HoloError {
	return AttachSuggestions(New(code, CategoryValidation, fmt.Sprintf(format, args...)))
}

// NetworkWrap wraps an error as a network error.
func NetworkWrap(cause error, code, message string) *HoloError {
	return AttachSuggestions(Wrap(cause, code, CategoryNetwork, message))
}

// IOWrap wraps an error as an IO error.
func IOWrap(cause error, code, message string) *HoloError {
	return AttachSuggestions(Wrap(cause, code, CategoryIO, message))
}

// Internalf creates an internal error with a formatted message.
func Internalf(code, format string, args ...interface{}) *HoloError {
	return New(code, CategoryInternal, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------
// Quick Constructors
// -----------------------------------------------------------------------------

// ConfigNotFound creates a CONFIG_NOT_FOUND error.
func ConfigNotFound(path string) *HoloError {
	return Config(ErrConfigNotFound, "configuration file not found").
		WithContext("path", path)
}

// ConfigParseError creates a CONFIG_PARSE_FAILED error.
func ConfigParseError(path string, cause error) *HoloError {
	return ConfigWrap(cause, ErrConfigParseFailed, "failed to parse configuration file").
		WithContext("path", path)
}

// ConfigInvalid creates a CONFIG_INVALID error for one field.
func ConfigInvalid(field, reason string) *HoloError {
	return Configf(ErrConfigInvalid, "invalid %s: %s", field, reason).
		WithContext("field", field)
}

// EnvInvalid creates a CONFIG_ENV_INVALID error.
func EnvInvalid(name, value string, cause error) *HoloError {
	return ConfigWrap(cause, ErrConfigEnvInvalid, "invalid environment override").
		WithContext("variable", name).
		WithContext("value", value)
}

// EntityNotFound creates an ENTITY_NOT_FOUND error.
func EntityNotFound(id uint32) *HoloError {
	return Entity(ErrEntityNotFound, fmt.Sprintf("no live entity with id 0x%08X", id)).
		WithContext("id", fmt.Sprintf("0x%08X", id))
}

// InvalidPopulationCount creates a POPULATION_INVALID_COUNT error.
func InvalidPopulationCount(n int) *HoloError {
	return Entity(ErrPopulationInvalidCount, fmt.Sprintf("population count must not be negative, got %d", n)).
		WithContext("count", fmt.Sprintf("%d", n))
}

// InvalidTaskVector creates a TASK_INVALID_VECTOR error.
func InvalidTaskVector(id uint32) *HoloError {
	return Task(ErrTaskInvalidVector, "task vector is not valid").
		WithContext("id", fmt.Sprintf("0x%08X", id))
}

// EmptySymbol creates a VOCAB_EMPTY_SYMBOL error.
func EmptySymbol() *HoloError {
	return Vocabulary(ErrVocabEmptySymbol, "symbol name cannot be empty")
}

// UnknownSymbol creates a VOCAB_UNKNOWN_SYMBOL error.
func UnknownSymbol(name string) *HoloError {
	return Vocabulary(ErrVocabUnknownSymbol, fmt.Sprintf("unknown symbol: %s", name)).
		WithContext("symbol", name)
}

// CommandNotFound creates a COMMAND_NOT_FOUND error.
func CommandNotFound(cmd string) *HoloError {
	return Commandf(ErrCommandNotFound, "unknown command: %s", cmd).
		WithContext("command", cmd)
}

// CommandMissingArgs creates a COMMAND_MISSING_ARGS error.
func CommandMissingArgs(cmd, usage string) *HoloError {
	return Commandf(ErrCommandMissingArgs, "missing required arguments for %s", cmd).
		WithContext("command", cmd).
		WithContext("usage", usage)
}

// CommandInvalidArg creates a COMMAND_INVALID_ARG error.
func CommandInvalidArg(arg, expected string) *HoloError {
	return Commandf(ErrCommandInvalidArg, "invalid argument: %s", arg).
		WithContext("argument", arg).
		WithContext("expected", expected)
}

// ValidationOutOfRange creates a VALIDATION_OUT_OF_RANGE error.
func ValidationOutOfRange(field string, value, min, max interface{}) *HoloError {
	return Validationf(ErrValidationOutOfRange, "%s value %v is out of range [%v, %v]", field, value, min, max).
		WithContext("field", field).
		WithContext("value", fmt.Sprintf("%v", value))
}

// ExportFailed creates an EXPORT_FAILED error.
func ExportFailed(path string, cause error) *HoloError {
	return IOWrap(cause, ErrExportFailed, "export failed").
		WithContext("path", path)
}

// ExportNoData creates an EXPORT_NO_DATA error.
func ExportNoData() *HoloError {
	return AttachSuggestions(New(ErrExportNoData, CategoryIO, "no live entities to export"))
}

// InternalPanic creates an INTERNAL_PANIC error for recovered panics.
func InternalPanic(recovered interface{}) *HoloError {
	return Internalf(ErrInternalPanic, "panic recovered: %v", recovered)
}
