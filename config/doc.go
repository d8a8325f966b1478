// Package config loads configuration for scod applications.
//
// Load returns the flat, namespaced blob an Application resolves against:
// top-level keys are component names, values are each component's fields.
// It reads config.yml (searched in the usual cmd/ and config/ locations or
// given with WithConfigFile), loads a .env file into the environment, and
// applies overrides from variables named <PREFIX>_<COMPONENT>__<FIELD>.
//
//	blob, err := config.Load("order-api", config.WithRoot("components"))
//	ops, err := app.Resolve(ctx, blob)
//
// With this file
//
//	components:
//	  db:
//	    dsn: postgres://localhost/orders
//
// ORDER_API_DB__DSN=postgres://db/orders overrides components.db.dsn.
//
// LoadConfig decodes the same sources into a struct, typically one embedding
// ServiceConfig:
//
//	var cfg config.ServiceConfig
//	err := config.LoadConfig("order-api", &cfg)
package config
