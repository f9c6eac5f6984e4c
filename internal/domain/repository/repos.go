package repository

// Repos agrupa los repositorios atados a una misma transacción (o al pool fuera de ella).
type Repos struct {
	Accounts  AccountRepository
	Events    LedgerEventRepository
	Products  ProductRepository
	Branches  BranchRepository
	Movements StockMovementRepository
	Transfers TransferRepository
	Users     UserRepository
}
