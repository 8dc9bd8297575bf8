package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/query"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns/crypto"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns/file"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns/schedule"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns/token"
	"github.com/nspcc-dev/ledger-services/pkg/fees"
	feeschedule "github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"github.com/nspcc-dev/ledger-services/pkg/fees/usage"
	"go.uber.org/zap"
)

// Node holds the ledger state and everything needed to handle transactions
// and price queries.
type Node struct {
	cfg   config.ProtocolConfiguration
	store storage.Store
	state *state.State
	ctx   *txns.BasicContext

	prices     *fees.BasicUsagePrices
	exchange   *fees.BasicExchange
	multiplier *fees.CongestionMultipliers
	calc       *fees.Calculator
	proc       *txns.Processor

	feeSchedulesFile  entity.ID
	exchangeRatesFile entity.ID

	// Only one transaction is handled at a time, state reads wait for it
	// to be committed or reset.
	lock sync.RWMutex

	log *zap.Logger
}

// NewNode creates a Node over the given store. Throttle reports network
// usage for the congestion multiplier, nil means no congestion.
func NewNode(s storage.Store, cfg config.ProtocolConfiguration, throttle fees.ThrottleSource, log *zap.Logger) (*Node, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid protocol configuration: %w", err)
	}
	if throttle == nil {
		throttle = fees.ThrottleFunc(func() int { return 0 })
	}
	st, err := state.New(storage.NewMemCachedStore(s), cfg, log)
	if err != nil {
		return nil, err
	}
	n := &Node{
		cfg:   cfg,
		store: s,
		state: st,
		ctx:   txns.NewBasicContext(),
		log:   log,
	}
	n.feeSchedulesFile = n.id(cfg.FeeSchedulesFile)
	n.exchangeRatesFile = n.id(cfg.ExchangeRatesFile)

	n.prices = fees.NewBasicUsagePrices(st.Files, n.feeSchedulesFile, n.ctx, log)
	n.exchange = fees.NewBasicExchange(st.Files, n.exchangeRatesFile, n.ctx, log)
	n.multiplier = fees.NewCongestionMultipliers(throttle, cfg.Fees, log)
	n.calc = fees.NewCalculator(n.exchange, n.prices, n.multiplier, usage.DefaultQueryEstimators(),
		usage.DefaultEstimators(cfg.Ledger.ScheduleTxExpiryTime).For, log)
	st.Files.OnUpdate(n.feeSchedulesFile, n.prices.OnFileUpdate)
	st.Files.OnUpdate(n.exchangeRatesFile, n.exchange.OnFileUpdate)

	n.proc, err = txns.NewProcessor(txns.Config{
		Store:      st.Store,
		Ledger:     st.Ledger,
		IDs:        st.IDs,
		Fees:       n.calc,
		Multiplier: n.multiplier,
		View:       st.View(),
		Funding:    n.id(cfg.FundingAccount),
		Logics:     n.logics(),
		Resets:     []func(){st.Reload},
	}, n.ctx, log)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) id(num int64) entity.ID {
	return entity.NewID(n.cfg.ShardNum, n.cfg.RealmNum, num)
}

func (n *Node) logics() []txns.TransitionLogic {
	var (
		s   = n.state
		ctx = n.ctx
		log = n.log
	)
	res := []txns.TransitionLogic{
		crypto.NewCreateTransitionLogic(s.Ledger, s.Validator, ctx, log),
		crypto.NewUpdateTransitionLogic(s.Ledger, s.Validator, ctx, log),
		crypto.NewDeleteTransitionLogic(s.Ledger, ctx, log),
		crypto.NewTransferTransitionLogic(s.Ledger, s.Validator, ctx, log),
		file.NewCreateTransitionLogic(s.Files, s.Validator, ctx, log),
		file.NewUpdateTransitionLogic(s.Files, s.Validator, ctx, log),
		file.NewAppendTransitionLogic(s.Files, s.Validator, ctx, log),
		file.NewDeleteTransitionLogic(s.Files, s.Validator, ctx, log),
		schedule.NewCreateTransitionLogic(s.Schedules, s.Validator, ctx, log),
		schedule.NewDeleteTransitionLogic(s.Schedules, ctx, log),
	}
	return append(res, token.All(token.Deps{
		Store:     s.Tokens,
		Ledger:    s.Ledger,
		Validator: s.Validator,
		Ctx:       ctx,
		Log:       log,
	})...)
}

// Init loads fee schedules and exchange rates, the node can't handle
// anything if it fails.
func (n *Node) Init() error {
	if err := n.calc.Init(); err != nil {
		return err
	}
	if err := n.exchange.LoadRates(); err != nil {
		return err
	}
	updateSequenceMetric(n.state.IDs.Peek())
	return nil
}

// Process handles the transaction at the given consensus time.
func (n *Node) Process(accessor *transaction.Accessor, now time.Time) (*txns.Record, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	rec, err := n.proc.Process(accessor, now)
	if err != nil {
		n.log.Error("failed to process transaction", zap.Stringer("tx", accessor.TxID()), zap.Error(err))
		return nil, err
	}
	n.log.Debug("transaction processed",
		zap.Stringer("tx", rec.TxID),
		zap.Stringer("status", rec.Status),
		zap.Int64("fee", rec.Fee))
	updateConsensusTimeMetric(now.Unix())
	updateSequenceMetric(n.state.IDs.Peek())
	return rec, nil
}

// EstimateFee returns the fee the transaction would be charged at the given
// time without congestion.
func (n *Node) EstimateFee(accessor *transaction.Accessor, at time.Time) (fees.FeeObject, error) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	payer, err := n.account(accessor.Payer())
	if err != nil {
		return fees.FeeObject{}, err
	}
	return n.calc.EstimateFee(accessor, payer.Key, n.state.View(), at)
}

// QueryFee returns the fee of the query answered at the given time.
func (n *Node) QueryFee(q *query.Query, at time.Time) (fees.FeeObject, error) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	return n.calc.ComputePayment(q, n.prices.PricesGiven(q.Functionality(), at), n.state.View(), at)
}

// PricesGiven returns prices of the functionality at the given time.
func (n *Node) PricesGiven(fn transaction.Functionality, at time.Time) feeschedule.FeeData {
	return n.prices.PricesGiven(fn, at)
}

// Account returns a copy of the account.
func (n *Node) Account(id entity.ID) (*entity.Account, error) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	return n.account(id)
}

func (n *Node) account(id entity.ID) (*entity.Account, error) {
	acc, ok := n.state.View().Account(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", txledger.ErrMissingEntity, id)
	}
	return acc, nil
}

// Close closes the underlying store.
func (n *Node) Close() error {
	return n.store.Close()
}
