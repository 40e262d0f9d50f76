package errors

import "errors"

// Configuration and CLI errors.
var (
	ErrLoadConfig        = errors.New("failed to load pomgraph configuration")
	ErrMergeConfig       = errors.New("failed to merge configuration")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidArguments  = errors.New("invalid arguments")
	ErrWriteFile         = errors.New("failed to write file")
	ErrInvalidFlagValue  = errors.New("invalid flag value")
	ErrMissingBasePath   = errors.New("base path does not exist")
	ErrUnknownSubcommand = errors.New("unknown subcommand")
)

// Model errors.
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidScope       = errors.New("invalid dependency scope")
	ErrInvalidVersion     = errors.New("invalid version")
	ErrInvalidExclusion   = errors.New("invalid exclusion pattern")
	ErrInvalidPackaging   = errors.New("invalid packaging")
)

// Descriptor and store errors.
var (
	ErrDescriptorNotFound          = errors.New("descriptor not found")
	ErrParentNotFound              = errors.New("parent descriptor not found")
	ErrReadDescriptor              = errors.New("failed to read descriptor")
	ErrParseDescriptor             = errors.New("failed to parse descriptor")
	ErrUnsupportedDescriptorFormat = errors.New("unsupported descriptor format")
	ErrDuplicateDescriptor         = errors.New("duplicate descriptor")
	ErrRewriteDescriptor           = errors.New("failed to rewrite descriptor")
	ErrForestLocked                = errors.New("descriptor forest is locked by another process")
	ErrInvalidPattern              = errors.New("invalid descriptor path pattern")
	ErrProjectNotFound             = errors.New("project not found")
	ErrAmbiguousProject            = errors.New("ambiguous project reference")
	ErrPropertyNotFound            = errors.New("property not defined")
	ErrStoreNotFound               = errors.New("store not found")
	ErrStoreType                   = errors.New("unknown store type")
	ErrStoreConfig                 = errors.New("invalid store configuration")
)

// Propagation errors.
var (
	ErrVersionMismatch      = errors.New("version mismatch")
	ErrPropagationDiverged  = errors.New("version propagation did not converge")
	ErrInvalidPolicy        = errors.New("invalid policy")
	ErrInvalidFamilyTarget  = errors.New("invalid family version target")
	ErrInvalidProjectTarget = errors.New("invalid project version target")
	ErrNoTargets            = errors.New("no version targets requested")
)

// Publish checker errors.
var (
	ErrPublishCheck        = errors.New("failed to check published state")
	ErrHTTPRequestFailed   = errors.New("HTTP request failed")
	ErrNilHTTPClient       = errors.New("HTTP client is nil")
	ErrMissingRepository   = errors.New("remote repository URL is not configured")
	ErrUnexpectedHTTPState = errors.New("unexpected HTTP status")
)

// Retry errors.
var (
	ErrRetryExhausted     = errors.New("retry attempts exhausted")
	ErrRetryTimeout       = errors.New("retry timeout exceeded")
	ErrRetryCancelled     = errors.New("retry cancelled")
	ErrInvalidRetryConfig = errors.New("invalid retry configuration")
)
