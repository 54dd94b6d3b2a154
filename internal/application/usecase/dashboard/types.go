package dashboard

import "cryptofolio/internal/application/port"

type Repository = port.Repository

// for repos needing Close()
type RepositoryCloser interface {
	port.Repository
	Close() error
}
