// Package engine implements the L4 coordinator of spec.md §2/§6: a
// single-threaded, synchronous state machine that owns accounts, markets,
// the insurance fund, and the event log, and sequences the L0-L3
// components (order book, position algebra, margin, mark price, funding,
// liquidation, ADL, risk) behind one command surface. Grounded on the
// teacher's x/perpetual/keeper and x/orderbook/keeper coordination style,
// generalized from a Cosmos SDK keeper into a plain in-process struct per
// the Design Notes' concurrency model (no chain, no I/O, time injected).
package engine

import (
	"sort"

	"cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/vela-exchange/perpcore/account"
	"github.com/vela-exchange/perpcore/adl"
	"github.com/vela-exchange/perpcore/events"
	"github.com/vela-exchange/perpcore/funding"
	"github.com/vela-exchange/perpcore/insurance"
	"github.com/vela-exchange/perpcore/liquidation"
	"github.com/vela-exchange/perpcore/margin"
	"github.com/vela-exchange/perpcore/market"
	"github.com/vela-exchange/perpcore/metrics"
	"github.com/vela-exchange/perpcore/orderbook"
	"github.com/vela-exchange/perpcore/position"
	"github.com/vela-exchange/perpcore/risk"
	"github.com/vela-exchange/perpcore/types"
)

// Engine is the sequential, deterministic core. All public methods are
// non-reentrant: each runs to completion before the next begins, per the
// Design Notes' scheduling model.
type Engine struct {
	now types.Timestamp

	nextAccountId types.AccountId
	nextMarketId  types.MarketId
	nextOrderId   types.OrderId

	accounts map[types.AccountId]*account.Account
	markets  map[types.MarketId]*market.State

	insurance *insurance.Fund
	log       *events.Log

	liquidationParams liquidation.Params
	adlParams         adl.Params

	logger  log.Logger
	metrics *metrics.Collector
}

// New constructs an empty engine with no accounts or markets, an empty
// event log bounded to maxEvents, and the default liquidation parameters.
func New(maxEvents int, logger log.Logger) *Engine {
	return &Engine{
		nextAccountId:     1,
		nextMarketId:      1,
		nextOrderId:       1,
		accounts:          make(map[types.AccountId]*account.Account),
		markets:           make(map[types.MarketId]*market.State),
		insurance:         insurance.New(),
		log:               events.NewLog(maxEvents),
		liquidationParams: liquidation.DefaultParams(),
		adlParams:         adl.DefaultParams(),
		logger:            logger,
		metrics:           metrics.GetCollector(),
	}
}

// SetTime sets the engine's injected clock, per spec.md §5.
func (e *Engine) SetTime(now types.Timestamp) {
	e.now = now
}

// AdvanceTime moves the injected clock forward by deltaMillis.
func (e *Engine) AdvanceTime(deltaMillis int64) {
	e.now = e.now.Add(deltaMillis)
}

// Now returns the engine's current injected time.
func (e *Engine) Now() types.Timestamp {
	return e.now
}

// Events returns the full retained event log.
func (e *Engine) Events() []events.Event {
	return e.log.All()
}

// InsuranceFund exposes the engine's insurance fund for inspection.
func (e *Engine) InsuranceFund() *insurance.Fund {
	return e.insurance
}

func (e *Engine) emit(kind events.Kind, market types.MarketId, payload interface{}) events.Event {
	return e.log.Append(kind, market, e.now, payload)
}

// ---- Accounts ----

// CreateAccount adds a new account with zero balance.
func (e *Engine) CreateAccount() types.AccountId {
	id := e.nextAccountId
	e.nextAccountId++
	e.accounts[id] = account.New(id, e.now)
	e.emit(events.KindAccountCreated, 0, events.AccountCreated{Account: id})
	return id
}

func (e *Engine) mustAccount(id types.AccountId) (*account.Account, error) {
	acc, ok := e.accounts[id]
	if !ok {
		return nil, errors.Wrapf(types.ErrAccountNotFound, "account %d", id)
	}
	return acc, nil
}

// Deposit credits amount to an account's free balance.
func (e *Engine) Deposit(id types.AccountId, amount types.Quote) error {
	acc, err := e.mustAccount(id)
	if err != nil {
		return err
	}
	acc.Deposit(amount)
	e.emit(events.KindDeposited, 0, events.Deposited{Account: id, Amount: amount, Balance: acc.Balance})
	return nil
}

// Withdraw debits amount from an account's available (unreserved)
// balance.
func (e *Engine) Withdraw(id types.AccountId, amount types.Quote) error {
	acc, err := e.mustAccount(id)
	if err != nil {
		return err
	}
	if amount.Value().GT(acc.AvailableBalance().Value()) {
		return errors.Wrapf(types.ErrInsufficientBalance, "account %d", id)
	}
	acc.Withdraw(amount)
	e.emit(events.KindWithdrawn, 0, events.Withdrawn{Account: id, Amount: amount, Balance: acc.Balance})
	return nil
}

// ---- Markets ----

// AddMarket registers a new market with the given immutable configuration.
func (e *Engine) AddMarket(cfg market.Config) types.MarketId {
	id := e.nextMarketId
	e.nextMarketId++
	cfg.ID = id
	e.markets[id] = market.New(cfg, e.now)
	e.emit(events.KindMarketAdded, id, events.MarketAdded{Market: id})
	return id
}

func (e *Engine) mustMarket(id types.MarketId) (*market.State, error) {
	m, ok := e.markets[id]
	if !ok {
		return nil, errors.Wrapf(types.ErrMarketNotFound, "market %d", id)
	}
	return m, nil
}

// PauseMarket transitions a market to Paused, rejecting new orders.
func (e *Engine) PauseMarket(id types.MarketId) error {
	m, err := e.mustMarket(id)
	if err != nil {
		return err
	}
	m.Status = market.StatusPaused
	e.emit(events.KindMarketPaused, id, events.MarketPaused{Market: id})
	return nil
}

// ResumeMarket transitions a paused market back to Active.
func (e *Engine) ResumeMarket(id types.MarketId) error {
	m, err := e.mustMarket(id)
	if err != nil {
		return err
	}
	m.Status = market.StatusActive
	e.emit(events.KindMarketResumed, id, events.MarketResumed{Market: id})
	return nil
}

// UpdateIndexPrice records a new oracle observation, re-derives the mark
// price, and evaluates the risk breaker for this market.
func (e *Engine) UpdateIndexPrice(id types.MarketId, price types.Price) error {
	m, err := e.mustMarket(id)
	if err != nil {
		return err
	}
	m.SetIndexPrice(price, e.now)
	e.emit(events.KindIndexPriceUpdated, id, events.IndexPriceUpdated{Market: id, Price: price})
	e.emit(events.KindMarkPriceUpdated, id, events.MarkPriceUpdated{Market: id, Mark: m.MarkPrice.Mark, Premium: m.MarkPrice.SmoothedPremium})

	if reason := m.Breaker.RecordPrice(price, e.now, m.Config.Risk); reason != risk.ReasonNone {
		e.tripBreaker(m, reason)
	}
	if reason := m.Breaker.CheckOpenInterest(types.NewQuote(m.OpenInterest.Mul(price.Value())), m.Config.Risk); reason != risk.ReasonNone {
		e.tripBreaker(m, reason)
	}
	if reason := m.Breaker.CheckInsuranceFund(e.insurance.Balance, m.Config.Risk); reason != risk.ReasonNone {
		e.tripBreaker(m, reason)
	}
	return nil
}

func (e *Engine) tripBreaker(m *market.State, reason risk.Reason) {
	if m.Breaker.Active {
		return
	}
	m.Breaker.Trip(reason, e.now)
	e.logger.Info("circuit breaker tripped", "market", m.Config.ID, "reason", reason.String())
	e.emit(events.KindCircuitBreakerTripped, m.Config.ID, events.CircuitBreakerTripped{Market: m.Config.ID, Reason: reason.String()})
}

// ResetCircuitBreaker clears a market's breaker if its cooldown has
// elapsed.
func (e *Engine) ResetCircuitBreaker(id types.MarketId) error {
	m, err := e.mustMarket(id)
	if err != nil {
		return err
	}
	if !m.Breaker.CanReset(e.now, m.Config.Risk) {
		return errors.Wrapf(types.ErrCircuitBreakerActive, "market %d cooldown not elapsed", id)
	}
	m.Breaker.Reset()
	e.emit(events.KindCircuitBreakerReset, id, events.CircuitBreakerReset{Market: id})
	return nil
}

// ---- Orders ----

// OrderResult is the outcome of placing a market or limit order, per
// spec.md §6.
type OrderResult struct {
	OrderID       types.OrderId
	FilledSize    types.Dec
	RemainingSize types.Dec
	AvgPrice      *types.Price
	IsPosted      bool
	Fills         []orderbook.Fill
}

// defaultLeverage returns the max leverage of a market's last (largest-
// notional) tier. Spec.md's order-placement commands carry no explicit
// leverage parameter, so the engine opens every new position at that
// leverage (an Open Question decision recorded in DESIGN.md); in an
// ascending tier schedule this is the lowest cap, so it is not the
// highest leverage a small position's own tier would allow.
func defaultLeverage(cfg margin.Config) types.Leverage {
	if len(cfg.Tiers) == 0 {
		return types.NewLeverageUnchecked(types.OneDec())
	}
	return types.NewLeverageUnchecked(cfg.Tiers[len(cfg.Tiers)-1].MaxLeverage)
}

func validateSize(cfg market.Config, size types.Dec) error {
	if size.LT(cfg.MinOrderSize) {
		return errors.Wrapf(types.ErrOrderTooSmall, "size %s below minimum %s", size, cfg.MinOrderSize)
	}
	remainder := size.Quo(cfg.LotSize).Sub(size.Quo(cfg.LotSize).TruncateDec())
	if !remainder.IsZero() {
		return errors.Wrapf(types.ErrInvalidLotSize, "size %s not a multiple of lot size %s", size, cfg.LotSize)
	}
	return nil
}

// PlaceMarketOrder submits an immediate-or-cancel market order.
func (e *Engine) PlaceMarketOrder(accID types.AccountId, marketID types.MarketId, side types.Side, size types.Dec) (OrderResult, error) {
	return e.placeOrder(accID, marketID, side, orderbook.OrderTypeMarket, size, nil, orderbook.IOC, false)
}

// PlaceLimitOrder submits a limit order with the given price and
// time-in-force policy. PostOnly is itself a TimeInForce value, per
// orderbook.Order — pass orderbook.PostOnly as tif to request it.
func (e *Engine) PlaceLimitOrder(accID types.AccountId, marketID types.MarketId, side types.Side, size types.Dec, price types.Price, tif orderbook.TimeInForce, reduceOnly bool) (OrderResult, error) {
	return e.placeOrder(accID, marketID, side, orderbook.OrderTypeLimit, size, &price, tif, reduceOnly)
}

func (e *Engine) placeOrder(accID types.AccountId, marketID types.MarketId, side types.Side, orderType orderbook.OrderType, size types.Dec, price *types.Price, tif orderbook.TimeInForce, reduceOnly bool) (OrderResult, error) {
	m, err := e.mustMarket(marketID)
	if err != nil {
		return OrderResult{}, err
	}
	if !m.IsActive() {
		if m.Breaker.Active {
			return OrderResult{}, errors.Wrapf(types.ErrCircuitBreakerActive, "market %d", marketID)
		}
		return OrderResult{}, errors.Wrapf(types.ErrMarketNotActive, "market %d", marketID)
	}
	acc, err := e.mustAccount(accID)
	if err != nil {
		return OrderResult{}, err
	}
	if err := validateSize(m.Config, size); err != nil {
		return OrderResult{}, err
	}
	if !m.HasIndex {
		return OrderResult{}, errors.Wrapf(types.ErrNoIndexPrice, "market %d", marketID)
	}

	if reduceOnly {
		pos := acc.Position(marketID)
		if pos == nil || pos.Side() == side || pos.Size.Abs().LT(size) {
			id := e.nextOrderId
			e.nextOrderId++
			e.emit(events.KindOrderCancelled, marketID, events.OrderCancelled{Order: id, Account: accID, Reason: types.CancelReduceOnlyInvalid})
			return OrderResult{OrderID: id, RemainingSize: size}, nil
		}
	}

	id := e.nextOrderId
	e.nextOrderId++
	order := orderbook.NewOrder(id, accID, marketID, side, orderType, size, price, tif, reduceOnly, "", e.now)
	e.emit(events.KindOrderPlaced, marketID, events.OrderPlaced{Order: id, Account: accID, Side: side})

	if tif == orderbook.FOK {
		fillable := orderbook.WouldFillSize(m.Book, order)
		if fillable.LT(size) {
			e.emit(events.KindOrderCancelled, marketID, events.OrderCancelled{Order: id, Account: accID, Reason: types.CancelExpired})
			return OrderResult{OrderID: id, RemainingSize: size}, nil
		}
	}

	// PostOnly must never take liquidity, so it is never run through Match:
	// a dry-run crossing check decides cancel-or-post before any fill can
	// happen, per spec.md §4.1's "PostOnly ... if any fills occurred,
	// cancel; otherwise post residual" (the residual here is the whole
	// order, since a would-cross order never partially posts).
	if order.PostOnly {
		if orderbook.WouldFillSize(m.Book, order).IsPositive() {
			e.emit(events.KindOrderCancelled, marketID, events.OrderCancelled{Order: id, Account: accID, Reason: types.CancelPostOnlyWouldTake})
			return OrderResult{OrderID: id, RemainingSize: size}, nil
		}
		m.Book.Insert(order)
		return OrderResult{OrderID: id, RemainingSize: size, IsPosted: true}, nil
	}

	result := orderbook.Match(m.Book, order)

	for _, f := range result.Fills {
		e.settleFill(m, f)
	}
	if len(result.Fills) > 0 {
		m.RefreshMark()
	}

	res := OrderResult{
		OrderID:       id,
		FilledSize:    order.FilledSize(),
		RemainingSize: order.Remaining,
		IsPosted:      false,
		Fills:         result.Fills,
	}
	if len(result.Fills) > 0 {
		res.AvgPrice = averagePrice(result.Fills)
	}

	if order.Remaining.IsZero() {
		return res, nil
	}

	switch {
	case orderType == orderbook.OrderTypeMarket:
		e.emit(events.KindOrderCancelled, marketID, events.OrderCancelled{Order: id, Account: accID, Reason: types.CancelExpired})
	case tif == orderbook.IOC, tif == orderbook.FOK:
		e.emit(events.KindOrderCancelled, marketID, events.OrderCancelled{Order: id, Account: accID, Reason: types.CancelExpired})
	case tif == orderbook.GTC:
		ok := e.checkResidualMargin(m, acc, order)
		if ok {
			m.Book.Insert(order)
			res.IsPosted = true
		} else {
			e.emit(events.KindOrderCancelled, marketID, events.OrderCancelled{Order: id, Account: accID, Reason: types.CancelInsufficientMargin})
		}
	}

	return res, nil
}

func averagePrice(fills []orderbook.Fill) *types.Price {
	if len(fills) == 0 {
		return nil
	}
	notional := types.ZeroDec()
	size := types.ZeroDec()
	for _, f := range fills {
		notional = notional.Add(f.Size.Mul(f.Price))
		size = size.Add(f.Size)
	}
	if size.IsZero() {
		return nil
	}
	p := types.NewPriceUnchecked(notional.Quo(size))
	return &p
}

// checkResidualMargin runs the GTC margin check on an order's unfilled
// residual before it is posted, per spec.md §4.1.
func (e *Engine) checkResidualMargin(m *market.State, acc *account.Account, order *orderbook.Order) bool {
	price := m.MarkPrice.Mark
	if order.Price != nil {
		price = *order.Price
	}
	pos := acc.Position(m.Config.ID)
	existingAbs := types.ZeroDec()
	existingCollateral := types.ZeroQuote()
	if pos != nil {
		existingAbs = pos.Size.Abs()
		existingCollateral = pos.Collateral
	}
	newAbs := existingAbs.Add(order.Remaining)
	req := margin.Compute(m.Config.Margin, newAbs, price, defaultLeverage(m.Config.Margin))
	additional := req.Initial.Sub(existingCollateral)
	if !additional.IsPositive() {
		return true
	}
	return additional.Value().LTE(acc.AvailableBalance().Value())
}

// CancelOrder removes a resting order from its market's book.
func (e *Engine) CancelOrder(marketID types.MarketId, orderID types.OrderId) error {
	m, err := e.mustMarket(marketID)
	if err != nil {
		return err
	}
	order, ok := m.Book.Remove(orderID)
	if !ok {
		return errors.Wrapf(types.ErrOrderNotFound, "order %d", orderID)
	}
	e.emit(events.KindOrderCancelled, marketID, events.OrderCancelled{Order: orderID, Account: order.Account, Reason: types.CancelUserRequested})
	return nil
}

// settleFill applies one matched fill's position, collateral, open
// interest, and event effects. Matching itself never touches positions
// (Design Notes §9: matching and position update are two phases).
func (e *Engine) settleFill(m *market.State, f orderbook.Fill) {
	price := types.NewPriceUnchecked(f.Price)
	e.applyLeg(m, f.MakerOrder.Account, f.MakerOrder.Side, f.Size, price)
	e.applyLeg(m, f.TakerOrder.Account, f.TakerSide, f.Size, price)
	m.AddVolume(f.Size.Mul(f.Price))
}

func (e *Engine) applyLeg(m *market.State, accID types.AccountId, side types.Side, size types.Dec, price types.Price) {
	acc, ok := e.accounts[accID]
	if !ok {
		return
	}
	existing := acc.Position(m.Config.ID)
	fundingIndex := m.Funding.CumulativeFunding

	delta := types.SignedFor(side, size)
	sameDirection := existing == nil || existing.IsEmpty() ||
		(delta.IsPositive() && existing.Size.IsLong()) ||
		(delta.IsNegative() && existing.Size.IsShort())

	additional := types.ZeroQuote()
	if sameDirection {
		existingAbs := types.ZeroDec()
		existingCollateral := types.ZeroQuote()
		if existing != nil {
			existingAbs = existing.Size.Abs()
			existingCollateral = existing.Collateral
		}
		newAbs := existingAbs.Add(size)
		req := margin.Compute(m.Config.Margin, newAbs, price, defaultLeverage(m.Config.Margin))
		diff := req.Initial.Sub(existingCollateral)
		if diff.IsPositive() {
			additional = diff
		}
	} else if existing != nil && size.GT(existing.Size.Abs()) {
		remainder := size.Sub(existing.Size.Abs())
		req := margin.Compute(m.Config.Margin, remainder, price, defaultLeverage(m.Config.Margin))
		additional = req.Initial
	}

	wasLong := existing != nil && existing.Size.IsLong()
	wasEmpty := existing == nil || existing.IsEmpty()
	oldAbs := types.ZeroDec()
	if existing != nil {
		oldAbs = existing.Size.Abs()
	}

	outcome := position.Apply(existing, m.Config.ID, position.Delta{
		Size:                 delta,
		Price:                price,
		AdditionalCollateral: additional,
		FundingIndex:         fundingIndex,
		FlipLeverage:         defaultLeverage(m.Config.Margin),
	}, e.now)

	acc.Balance = acc.Balance.Sub(additional)
	acc.ApplyRealizedPnL(outcome.RealizedPnL)
	acc.Balance = acc.Balance.Add(outcome.CollateralReturned)

	if outcome.Closed && !outcome.Opened {
		e.emit(events.KindPositionClosed, m.Config.ID, events.PositionClosed{Account: accID, Market: m.Config.ID, RealizedPnL: outcome.RealizedPnL})
	}
	acc.SetPosition(m.Config.ID, outcome.Updated)
	if outcome.Closed && outcome.Opened {
		e.emit(events.KindPositionClosed, m.Config.ID, events.PositionClosed{Account: accID, Market: m.Config.ID, RealizedPnL: outcome.RealizedPnL})
	}
	if outcome.Opened {
		e.emit(events.KindPositionOpened, m.Config.ID, events.PositionOpened{Account: accID, Market: m.Config.ID, Size: outcome.Updated.Size, Entry: outcome.Updated.Entry, Collateral: outcome.Updated.Collateral})
	} else if outcome.Updated != nil {
		e.emit(events.KindPositionUpdated, m.Config.ID, events.PositionUpdated{Account: accID, Market: m.Config.ID, Size: outcome.Updated.Size, Entry: outcome.Updated.Entry, Collateral: outcome.Updated.Collateral})
	}

	// Open interest tracks long exposure only; because every fill moves a
	// long leg and a short leg by an equal magnitude, adding the long size
	// each leg opens and removing the long size it closes keeps
	// long_oi == short_oi (spec.md §8 invariant 1).
	if wasLong || (wasEmpty && side == types.Long) {
		switch {
		case wasEmpty:
			m.AddOpenInterest(size)
		case sameDirection:
			m.AddOpenInterest(size)
		default:
			m.AddOpenInterest(types.MinDec(size, oldAbs).Neg())
		}
	} else if side == types.Long && size.GT(oldAbs) {
		// A short leg buying through its position flips to long.
		m.AddOpenInterest(size.Sub(oldAbs))
	}
}

// ---- Funding ----

// FundingResult is the outcome of settling funding for one market, per
// spec.md §6.
type FundingResult struct {
	Rate               types.Dec
	TotalLongPayments  types.Quote
	TotalShortPayments types.Quote
	LPFeeCollected     types.Quote
	AccountsAffected   int
}

// SettleFunding advances a market's funding state to the current time,
// applying payments pro-rated by the time elapsed since the last
// settlement to every account with an open position in the market, per
// spec.md §4.6.
func (e *Engine) SettleFunding(marketID types.MarketId) (FundingResult, error) {
	m, err := e.mustMarket(marketID)
	if err != nil {
		return FundingResult{}, err
	}
	if !m.HasIndex {
		return FundingResult{}, errors.Wrapf(types.ErrNoIndexPrice, "market %d", marketID)
	}
	if m.MarkPrice.Mark.IsZero() {
		return FundingResult{}, errors.Wrapf(types.ErrNoMarkPrice, "market %d", marketID)
	}

	premium := funding.Premium(m.MarkPrice.Mark, m.IndexPrice)
	instantRate := funding.InstantRate(premium, m.Config.Funding)
	proratedRate := funding.ProratedRate(instantRate, m.Funding.LastUpdate, e.now, m.Config.Funding)

	var accountIDs []types.AccountId
	for id, acc := range e.accounts {
		pos := acc.Position(marketID)
		if pos == nil || pos.IsEmpty() {
			continue
		}
		accountIDs = append(accountIDs, id)
	}
	sort.Slice(accountIDs, func(i, j int) bool { return accountIDs[i] < accountIDs[j] })

	var payments []funding.PositionPayment
	for _, id := range accountIDs {
		pos := e.accounts[id].Position(marketID)
		gross := funding.GrossPayment(pos.Size, m.MarkPrice.Mark, proratedRate)
		payments = append(payments, funding.PositionPayment{Account: id, Size: pos.Size, Gross: gross})
	}

	adjusted, lpFee := funding.ApplyLPFeeSplit(payments, m.Config.Funding.LPFeeFraction)

	result := FundingResult{
		Rate:               proratedRate,
		TotalLongPayments:  types.ZeroQuote(),
		TotalShortPayments: types.ZeroQuote(),
		LPFeeCollected:     lpFee,
		AccountsAffected:   len(adjusted),
	}
	for _, a := range adjusted {
		acc := e.accounts[a.Account]
		pos := acc.Position(marketID)
		if pos == nil {
			continue
		}
		if pos.Size.IsLong() {
			result.TotalLongPayments = result.TotalLongPayments.Add(a.Payment)
		} else {
			result.TotalShortPayments = result.TotalShortPayments.Add(a.Payment)
		}
		newBalance := acc.Balance.Sub(a.Payment).ClampNonNegative()
		acc.Balance = newBalance
		pos.EntryFundingIndex = m.Funding.CumulativeFunding.Add(proratedRate)
		acc.SetPosition(marketID, pos)
		e.emit(events.KindFundingSettled, marketID, events.FundingSettled{Market: marketID, Rate: proratedRate})
	}

	m.Funding = funding.Advance(m.Funding, proratedRate, e.now)
	return result, nil
}

// ---- Liquidation and ADL ----

// LiquidationResult is the outcome of liquidating one account-market
// position, per spec.md §4.3.
type LiquidationResult struct {
	Account types.AccountId
	Size    types.SignedSize
	Price   types.Price
	Penalty types.Quote
	BadDebt types.Quote
	Covered types.Quote
}

// CheckLiquidations evaluates every open position in a market against the
// current mark price and liquidates any that are below maintenance
// margin, in deterministic account-id order, triggering ADL when bad debt
// cannot be fully covered by the insurance fund.
func (e *Engine) CheckLiquidations(marketID types.MarketId) ([]LiquidationResult, error) {
	m, err := e.mustMarket(marketID)
	if err != nil {
		return nil, err
	}
	if m.MarkPrice.Mark.IsZero() {
		return nil, errors.Wrapf(types.ErrNoMarkPrice, "market %d", marketID)
	}

	var candidateIDs []types.AccountId
	for id, acc := range e.accounts {
		pos := acc.Position(marketID)
		if pos == nil || pos.IsEmpty() {
			continue
		}
		req := margin.Compute(m.Config.Margin, pos.Size.Abs(), m.MarkPrice.Mark, pos.Leverage)
		equity := pos.Equity(m.MarkPrice.Mark, m.Funding.CumulativeFunding)
		eval := liquidation.Evaluate(equity, req, pos.Entry, pos.Side())
		if eval.Status == liquidation.Liquidatable || eval.Status == liquidation.Bankrupt {
			candidateIDs = append(candidateIDs, id)
		}
	}
	sort.Slice(candidateIDs, func(i, j int) bool { return candidateIDs[i] < candidateIDs[j] })

	var results []LiquidationResult
	for _, id := range candidateIDs {
		r := e.liquidateOne(m, id)
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (e *Engine) liquidateOne(m *market.State, accID types.AccountId) *LiquidationResult {
	acc := e.accounts[accID]
	pos := acc.Position(m.Config.ID)
	if pos == nil || pos.IsEmpty() {
		return nil
	}

	mark := m.MarkPrice.Mark
	notional := pos.Notional(mark).Value()
	penalty := liquidation.ComputePenalty(notional, e.liquidationParams)
	equity := pos.Equity(mark, m.Funding.CumulativeFunding)
	remainingEquity := equity.Sub(penalty.Total)

	badDebt := types.ZeroQuote()
	if remainingEquity.IsNegative() {
		badDebt = types.NewQuote(remainingEquity.Value().Abs())
	} else if remainingEquity.IsPositive() {
		acc.Balance = acc.Balance.Add(remainingEquity)
	}

	size := pos.Size
	side := pos.Side()
	acc.SetPosition(m.Config.ID, nil)

	covered := types.ZeroQuote()
	if badDebt.IsPositive() {
		covered = e.insurance.CoverBadDebt(badDebt)
	}
	e.insurance.Deposit(penalty.InsuranceContribution)

	if side == types.Long {
		m.AddOpenInterest(size.Abs().Neg())
	}

	e.emit(events.KindLiquidated, m.Config.ID, events.Liquidated{
		Account: accID, Market: m.Config.ID, Size: size, Price: mark, Penalty: penalty.Total, BadDebt: badDebt,
	})

	uncovered := badDebt.Sub(covered)
	if adl.ShouldTrigger(badDebt, covered) && uncovered.Value().GTE(e.adlParams.MinTriggerAmount.Value()) {
		e.runADL(m, side, uncovered)
	}

	e.logger.Info("position liquidated", "market", m.Config.ID, "account", accID, "bad_debt", badDebt.Value().String())

	return &LiquidationResult{Account: accID, Size: size, Price: mark, Penalty: penalty.Total, BadDebt: badDebt, Covered: covered}
}

func (e *Engine) runADL(m *market.State, bankruptSide types.Side, remainingDebt types.Quote) {
	var candidates []adl.Candidate
	leverages := make(map[types.AccountId]types.Dec)
	for id, acc := range e.accounts {
		pos := acc.Position(m.Config.ID)
		if pos == nil || pos.IsEmpty() {
			continue
		}
		candidates = append(candidates, adl.Candidate{
			Account:       id,
			Size:          pos.Size,
			Collateral:    pos.Collateral,
			UnrealizedPnL: pos.UnrealizedPnL(m.MarkPrice.Mark),
		})
		leverages[id] = pos.Leverage.Value()
	}

	ranked := adl.RankCandidates(candidates, bankruptSide, leverages)
	deleverages := adl.CalculateSizes(ranked, remainingDebt, m.MarkPrice.Mark, e.adlParams)

	for _, d := range deleverages {
		acc := e.accounts[d.Account]
		pos := acc.Position(m.Config.ID)
		if pos == nil {
			continue
		}
		closeDelta := types.SignedFor(pos.Side(), d.Size).Neg()
		outcome := position.Apply(pos, m.Config.ID, position.Delta{
			Size:         closeDelta,
			Price:        m.MarkPrice.Mark,
			FundingIndex: m.Funding.CumulativeFunding,
		}, e.now)
		acc.ApplyRealizedPnL(outcome.RealizedPnL)
		acc.Balance = acc.Balance.Add(outcome.CollateralReturned)
		acc.SetPosition(m.Config.ID, outcome.Updated)

		e.emit(events.KindADLExecuted, m.Config.ID, events.ADLExecuted{
			BankruptAccount: 0, Market: m.Config.ID, Counterparty: d.Account, Size: d.Size, Price: m.MarkPrice.Mark,
		})
	}
}

// ---- Insurance ----

// FundInsurance deposits amount into the insurance fund directly.
func (e *Engine) FundInsurance(amount types.Quote) error {
	e.insurance.Deposit(amount)
	e.emit(events.KindInsuranceFunded, 0, events.InsuranceFunded{Amount: amount, Balance: e.insurance.Balance})
	return nil
}
