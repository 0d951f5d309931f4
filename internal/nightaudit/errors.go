package nightaudit

import "errors"

var (
	ErrInvalidConfig   = errors.New("nightaudit: invalid config")
	ErrAuditInProgress = errors.New("audit_in_progress")
)
