// Package app wires configuration, telemetry and the optional result store
// into the preprocessing and processing runs used by the command line tools.
//
// A typical command does:
//
//	application, err := app.NewApplication(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer application.Stop(ctx)
//	_, err = application.Process(ctx, application.Acknowledger(os.Stdin, os.Stdout))
package app
