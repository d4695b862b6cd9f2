package config

// EnvPrefix is intentionally empty: every variable already carries the
// ARMORY_ prefix in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ARMORY_DB_DSN"
	EnvDBHost = "ARMORY_DB_HOST"
	EnvDBUser = "ARMORY_DB_USER"
	EnvDBName = "ARMORY_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
