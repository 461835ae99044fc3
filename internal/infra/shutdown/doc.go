// Package shutdown runs the listeners of a server process and stops them
// in reverse order of start on SIGINT, SIGTERM or the first listener
// failure.
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("http", srv.Shutdown)
//	h.Go("http", srv.ListenAndServe)
//	err := h.Wait(ctx)
package shutdown
