// Package di resolves named, configuration-driven components and binds
// operations to them.
//
// A Component is declared once with its dependencies, its configuration
// shape and a factory. Resolving it against a flat configuration blob
// (component name -> that component's own fields) constructs every
// transitive dependency first, validates each component's slice strictly,
// and memoizes instances by name within one Session.
//
// # Components
//
//	db := di.Define("db", func(ctx context.Context, _ di.Deps, cfg schema.Values) (*sql.DB, error) {
//	    return sql.Open("postgres", cfg.String("dsn"))
//	}, di.Configure(schema.Shape{"dsn": schema.String()}))
//
//	repo := di.Define("repo", func(ctx context.Context, deps di.Deps, _ schema.Values) (*Repo, error) {
//	    return NewRepo(di.MustGet[*sql.DB](deps, "db")), nil
//	}, di.DependsOn("db", db))
//
//	r, err := repo.Resolve(ctx, map[string]any{"db": map[string]any{"dsn": "..."}})
//
// # Operations
//
//	getUser := di.NewOperation(func(ctx context.Context, deps di.Deps, in schema.Values) (*User, error) {
//	    return di.MustGet[*Repo](deps, "repo").Get(ctx, in.String("id"))
//	}, di.DependsOn("repo", repo), di.Input(schema.Shape{"id": schema.String()}), di.Output(schema.Any()))
//
// # Applications
//
// An Application aggregates operations, derives the combined configuration
// shape and resolves all of them eagerly (Resolve) or on first call (Lazy).
//
//	app := di.NewApplication(map[string]di.Op{"get_user": getUser})
//	ops, err := app.Resolve(ctx, cfg)
//	user, err := di.Call[*User](ctx, ops, "get_user", map[string]any{"id": "42"})
//
// Resolution goes through a Resolver. The default is a fresh Session per
// call; pass WithResolver to share a Session or to substitute a stub.
package di
