// Package fitspire wires the fitness-social client core: configuration,
// persisted state, the backend API client, the auth session, the appearance
// resolver, the profile service and the workout feed.
//
// A typical client builds an App from configuration, starts it and renders
// whatever Route reports:
//
//	app, err := fitspire.New(cfg)
//	if err != nil { ... }
//	defer app.Close()
//	if err := app.Start(ctx); err != nil { ... }
//	switch app.Route() { ... }
package fitspire
