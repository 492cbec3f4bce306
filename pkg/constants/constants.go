package constants

type ContextKey string

const (
	LoggerKey      ContextKey = "logger"
	RequestStart   ContextKey = "requestStart"
	ParamsKey      ContextKey = "params"
	PoolKey        ContextKey = "pool"
	TxKey          ContextKey = "tx"
	AppKey         ContextKey = "app"
	PermissionsKey ContextKey = "permissions"
	SubjectKey     ContextKey = "subject"
)
