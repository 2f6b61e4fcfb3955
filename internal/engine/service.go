package engine

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/ledger"
)

// Holder identities for the engine-owned custody accounts.
const (
	StakingCustody = ledger.StakingCustody
	VestingCustody = ledger.VestingCustody
)

// Queue names for published events.
const (
	TradeEventQueue     = "launch_trades"
	MigrateJobQueue     = "liquidity_migrate"
	DefaultPoolDeadline = 5 * time.Minute
)

// PoolManager is the external concentrated-liquidity pool and position
// manager the curve hands liquidity to after completion. Methods take the
// caller's *gorm.DB so pool rows roll back with the enclosing transaction.
type PoolManager interface {
	CreateOrGetPool(tx *gorm.DB, baseMint, tokenMint string, feeTier uint32) (string, error)
	InitializePrice(tx *gorm.DB, pool string, sqrtPriceX64 *big.Int) error
	MintPosition(tx *gorm.DB, pool string, baseAmount, tokenAmount uint64, deadline time.Time) (string, error)
}

// BuyAuthVerifier checks the off-chain signer's authorization for a temporary
// per-user purchase-cap increase.
type BuyAuthVerifier interface {
	Verify(verifierKey string, message []byte, signature string) bool
}

// EventPublisher pushes operation events onto a durable queue. Publishing is
// best-effort; it never fails an operation.
type EventPublisher interface {
	Publish(queueName string, message interface{}) error
}

// CurveStatusProvider reports a launch curve's completion status. The vesting
// engine consumes it instead of reading curve state directly so deferred
// schedules stay testable against a fake.
type CurveStatusProvider interface {
	CurveStatus(launchID uint) (complete bool, completedAt int64, err error)
}

// Service wires the three accounting engines (curve trading, vesting release,
// staking reward accrual) over a shared database and the custody ledgers.
type Service struct {
	db       *gorm.DB
	assets   *ledger.AssetLedger
	tokens   *ledger.TokenLedger
	pool     PoolManager
	verifier BuyAuthVerifier
	events   EventPublisher
	status   CurveStatusProvider
	locks    opLocks
	now      func() time.Time
}

// Option tweaks Service construction.
type Option func(*Service)

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEventPublisher attaches a queue publisher for trade/migration events.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithCurveStatusProvider overrides the completion-status source used by the
// vesting engine.
func WithCurveStatusProvider(p CurveStatusProvider) Option {
	return func(s *Service) { s.status = p }
}

func NewService(db *gorm.DB, pool PoolManager, verifier BuyAuthVerifier, opts ...Option) *Service {
	s := &Service{
		db:       db,
		assets:   ledger.NewAssetLedger(),
		tokens:   ledger.NewTokenLedger(),
		pool:     pool,
		verifier: verifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.status == nil {
		s.status = dbCurveStatus{db: db}
	}
	return s
}

// Assets exposes the value-transfer ledger for coordinator and admin flows.
func (s *Service) Assets() *ledger.AssetLedger { return s.assets }

// Tokens exposes the token ledger for coordinator and admin flows.
func (s *Service) Tokens() *ledger.TokenLedger { return s.tokens }

// DB exposes the backing handle for view queries.
func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) nowUnix() int64 { return s.now().Unix() }

func (s *Service) publish(queue string, msg interface{}) {
	if s.events == nil {
		return
	}
	// best-effort: a queue outage must not fail a committed trade
	_ = s.events.Publish(queue, msg)
}

// CurveCustodyAccount returns the deterministic custody holder identity for a
// launch mint. The coordinator approves token pulls against it before calling
// InitializeCurve.
func CurveCustodyAccount(tokenMint string) string {
	return fmt.Sprintf("curve:%s", tokenMint)
}

// dbCurveStatus is the production CurveStatusProvider.
type dbCurveStatus struct {
	db *gorm.DB
}

func (p dbCurveStatus) CurveStatus(launchID uint) (bool, int64, error) {
	var curve models.LaunchCurve
	err := p.db.First(&curve, launchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, 0, fmt.Errorf("%w: launch %d", ErrNotFound, launchID)
	}
	if err != nil {
		return false, 0, err
	}
	return curve.Complete, curve.CompletedAt, nil
}

func (s *Service) feeConfig(tx *gorm.DB) (*models.FeeConfig, error) {
	var cfg models.FeeConfig
	err := tx.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// no row yet: zero fees, redistribution off
		return &models.FeeConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Service) baseAssetPolicy(tx *gorm.DB, mint string) (*models.BaseAssetPolicy, error) {
	var policy models.BaseAssetPolicy
	err := tx.Where("mint = ?", mint).First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: base asset %s not whitelisted", ErrAuthorization, mint)
	}
	if err != nil {
		return nil, err
	}
	if !policy.Enabled {
		return nil, fmt.Errorf("%w: base asset %s disabled", ErrAuthorization, mint)
	}
	return &policy, nil
}
