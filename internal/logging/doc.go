// Package logging provides structured logging for codedock.
//
// It wraps log/slog with a JSON handler and adds persistent context
// attributes so every line emitted while embedding a window can be traced
// back to the session, the native window handle and the pipeline phase:
//
//	logger, err := logging.NewLoggerWithRotation(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithSession("s1").WithWindow(hwnd).WithPhase("embed")
//	log.Info("window reparented", "container", "0x3c4d")
//
// The level is held in a slog.LevelVar shared by all child loggers, so
// [Logger.SetLevel] takes effect immediately everywhere; the run command
// uses this to apply config file edits without a restart.
//
// File output goes to codedock.log through a [RotatingWriter] that keeps
// a bounded number of numbered (optionally gzipped) backups. With an
// empty directory the logger writes to stderr. Tests use [NopLogger].
package logging
