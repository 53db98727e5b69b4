package ballotledger

import (
	"log/slog"

	httpadapter "greenballot/contexts/election-core/ballot-ledger/adapters/http"
	"greenballot/contexts/election-core/ballot-ledger/adapters/memory"
	"greenballot/contexts/election-core/ballot-ledger/application/commands"
	"greenballot/contexts/election-core/ballot-ledger/application/queries"
	"greenballot/contexts/election-core/ballot-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Ballot  *commands.BallotUseCase
	Results queries.ResultsUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Ledger ports.BallotRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ballotUseCase := &commands.BallotUseCase{
		Ledger: deps.Ledger,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Ledger: deps.Ledger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ballot:  ballotUseCase,
			Results: resultsUseCase,
			Logger:  deps.Logger,
		},
		Ballot:  ballotUseCase,
		Results: resultsUseCase,
	}
}

// NewInMemoryModule wires the module over the canonical in-memory store with
// the given admin principal; the system starts active.
func NewInMemoryModule(admin string, logger *slog.Logger) Module {
	store := memory.NewStore(admin)
	module := NewModule(Dependencies{
		Ledger: store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
