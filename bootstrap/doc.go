// Package bootstrap runs an application as a service: it loads the service
// configuration, sets up logging and telemetry, resolves the operations and
// serves them over HTTP until a shutdown signal.
//
//	cfg, err := bootstrap.LoadConfig("orders")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.NewApp(cfg, di.NewApplication(ops))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// RunTask drives the same lifecycle for one-shot processes that invoke
// operations directly instead of serving them.
package bootstrap
