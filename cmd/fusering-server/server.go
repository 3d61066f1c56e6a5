package main

import (
	"github.com/fusering/fusering/internal/field"
)

// fieldLoggerAdapter adapts the server's Logger to the field.Logger interface
type fieldLoggerAdapter struct {
	logger *Logger
}

func (a *fieldLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *fieldLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *fieldLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *fieldLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// Server represents the HTTP server for the fusering board engine
type Server struct {
	manager     *field.GameManager
	notifierMgr *field.NotificationManager
	catalog     *field.Catalog
	snapshotDir string
	logger      *Logger
}

// NewServer creates a new server instance over the given catalog. A nil
// catalog selects the embedded default.
func NewServer(logger *Logger, catalog *field.Catalog) *Server {
	fieldLogger := &fieldLoggerAdapter{logger: logger}
	if catalog == nil {
		catalog = field.DefaultCatalog()
	}
	return &Server{
		manager:     field.NewGameManagerWithLogger(fieldLogger),
		notifierMgr: field.NewNotificationManagerWithLogger(fieldLogger),
		catalog:     catalog,
		logger:      logger,
	}
}

// SetSnapshotDir sets the directory where game snapshots are written
func (s *Server) SetSnapshotDir(dir string) {
	s.snapshotDir = dir
}

// Close shuts down the notification manager
func (s *Server) Close() error {
	return s.notifierMgr.Close()
}
