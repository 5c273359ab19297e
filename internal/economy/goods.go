// Package economy provides speculative cargo pricing and the freight,
// passenger and mail contracts a merchant ship can carry.
// Prices follow the T5 speculative trade rules: a lot's value is fixed by
// its origin world and its sale value by how well the market's trade codes
// match what the origin produces.
package economy

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/world"
)

// Lot pricing constants.
const (
	BaseLotCost   = 3000 // Cr per ton before trade-code and TL effects
	BaseSaleValue = 5000 // Cr per ton before market matches
	MatchBonus    = 1000 // Cr per ton per matching market code
	TechCostPerTL = 100

	lotMassMu    = 2.6
	lotMassSigma = 0.7
	minLotMass   = 1
	maxLotMass   = 100
)

// BuyingEffects adjust a lot's per-ton cost by origin trade code.
var BuyingEffects = map[string]int{
	"Ag": -1000,
	"As": -1000,
	"Ba": +1000,
	"De": +1000,
	"Fl": +1000,
	"Hi": -1000,
	"Ic": 0,
	"In": -1000,
	"Lo": +1000,
	"Na": 0,
	"Ni": +1000,
	"Po": -1000,
	"Ri": +1000,
	"Va": +1000,
}

// SellingCodes lists, per origin code, the market codes that pay a bonus.
var SellingCodes = map[string][]string{
	"Ag": {"Ag", "As", "De", "Hi", "In", "Ri", "Va"},
	"As": {"As", "In", "Ri", "Va"},
	"Ba": {"In"},
	"De": {"De"},
	"Fl": {"Fl", "In"},
	"Hi": {"Hi"},
	"Ic": {"In"},
	"In": {"Ag", "As", "De", "Fl", "Hi", "In", "Ri", "Va"},
	"Lo": {"In"},
	"Na": {"As", "De", "Va"},
	"Ni": {"In", "Ni"},
	"Po": {"Po"},
	"Ri": {"Ag", "De", "Hi", "In", "Ri"},
	"Va": {"As", "In", "Va"},
}

// actualValue maps a clamped flux+broker roll (-5..8) to a price multiplier.
var actualValue = [...]float64{0.4, 0.5, 0.7, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3, 1.5, 1.7, 2.0, 3.0, 4.0}

// ActualValue returns the price multiplier for a modified flux roll.
func ActualValue(roll int) float64 {
	roll = max(-5, min(8, roll))
	return actualValue[roll+5]
}

// Lot is one speculative cargo lot bought on a world.
type Lot struct {
	Serial    uuid.UUID `json:"serial"`
	ID        string    `json:"id"` // e.g. "C-Ag Ni 3400"
	Good      string    `json:"good"`
	Imbalance string    `json:"imbalance,omitempty"` // market code paying MatchBonus extra
	Origin    string    `json:"origin"`
	OriginTL  int       `json:"origin_tl"`
	Codes     []string  `json:"codes"` // origin codes that affect pricing
	Value     int       `json:"value"` // Cr per ton at origin
	Mass      int       `json:"mass"`  // tons
}

// NewLot creates a lot on origin with a lognormal mass.
func NewLot(origin *world.World, src entropy.Source) *Lot {
	l := NewLotWithMass(origin, generateLotMass(src))
	g := RollTradeGood(origin.TradeCodes, src)
	l.Good, l.Imbalance = g.Name, g.Imbalance
	return l
}

// NewLotWithMass creates a lot on origin with a fixed mass.
func NewLotWithMass(origin *world.World, mass int) *Lot {
	codes := pricingCodes(origin.TradeCodes)
	tl := origin.TechLevel()
	value := LotCost(codes, tl)
	return &Lot{
		Serial:   uuid.New(),
		ID:       lotID(tl, codes, value),
		Origin:   origin.Name,
		OriginTL: tl,
		Codes:    codes,
		Value:    value,
		Mass:     mass,
	}
}

// LotCost returns the per-ton origin value of goods with the given codes and TL.
func LotCost(codes []string, techLevel int) int {
	cost := BaseLotCost + techLevel*TechCostPerTL
	for _, c := range codes {
		cost += BuyingEffects[c]
	}
	return cost
}

// Cost returns the purchase price of the whole lot.
func (l *Lot) Cost() decimal.Decimal {
	return decimal.NewFromInt(int64(l.Value) * int64(l.Mass))
}

// SaleValuePerTon returns the per-ton sale value of the lot on market,
// including the imbalance premium.
func (l *Lot) SaleValuePerTon(market *world.World) int {
	v := saleValue(l.Codes, l.OriginTL, market)
	if l.Imbalance != "" && market.HasCode(l.Imbalance) {
		v += MatchBonus
	}
	return v
}

// Manifest describes the lot's goods, e.g. "Imbalance from Ri: Spices".
func (l *Lot) Manifest() string {
	return TradeGood{Name: l.Good, Imbalance: l.Imbalance}.String()
}

// ProfitPerTon returns the expected per-ton profit of selling on market.
func (l *Lot) ProfitPerTon(market *world.World) int {
	return l.SaleValuePerTon(market) - l.Value
}

// ProfitPerTon returns the expected per-ton profit of goods bought on origin
// and sold on market. It is the formula used both for choosing routes and
// for deciding which lots to buy and sell.
func ProfitPerTon(origin, market *world.World) int {
	codes := pricingCodes(origin.TradeCodes)
	tl := origin.TechLevel()
	return saleValue(codes, tl, market) - LotCost(codes, tl)
}

func saleValue(codes []string, originTL int, market *world.World) int {
	matches := 0
	for _, c := range codes {
		for _, sc := range SellingCodes[c] {
			if market.HasCode(sc) {
				matches++
			}
		}
	}
	factor := decimal.NewFromInt(1).Add(decimal.New(int64(originTL-market.TechLevel()), -1))
	if factor.IsNegative() {
		factor = decimal.Zero
	}
	base := decimal.NewFromInt(int64(BaseSaleValue + MatchBonus*matches))
	return int(factor.Mul(base).Round(0).IntPart())
}

// Sale is the outcome of selling a lot.
type Sale struct {
	Flux       int
	Multiplier float64
	Gross      decimal.Decimal
	BrokerFee  decimal.Decimal
	Proceeds   decimal.Decimal
	Profit     decimal.Decimal

	// Forecast is the multiplier range a skilled seller read off the
	// market after the first die, before committing to the sale.
	Forecast *Forecast `json:",omitempty"`
}

// Forecast is a predicted multiplier range.
type Forecast struct {
	Skill    int
	FirstDie int
	Min      float64
	Max      float64
}

// Quote rolls the market for a lot on market using the best local broker.
// A seller with Liaison skill sees the first flux die before the second is
// rolled and records the range it allows.
func (l *Lot) Quote(market *world.World, liaison int, src entropy.Source) Sale {
	sp := market.Starport()
	first := entropy.D6(src)
	var forecast *Forecast
	if liaison > 0 {
		forecast = &Forecast{
			Skill:    liaison,
			FirstDie: first,
			Min:      ActualValue(first - 6 + sp.BrokerDM),
			Max:      ActualValue(first - 1 + sp.BrokerDM),
		}
	}
	flux := first - entropy.D6(src)
	mult := ActualValue(flux + sp.BrokerDM)

	perTon := decimal.NewFromInt(int64(l.SaleValuePerTon(market)))
	gross := perTon.Mul(decimal.NewFromInt(int64(l.Mass))).Mul(decimal.NewFromFloat(mult)).Round(0)
	fee := gross.Mul(decimal.NewFromFloat(sp.BrokerRate)).Round(0)
	proceeds := gross.Sub(fee)
	return Sale{
		Flux:       flux,
		Multiplier: mult,
		Gross:      gross,
		BrokerFee:  fee,
		Proceeds:   proceeds,
		Profit:     proceeds.Sub(l.Cost()),
		Forecast:   forecast,
	}
}

// AvailableCargo generates the speculative lots offered on a world.
// Unpopulated worlds offer nothing.
func AvailableCargo(origin *world.World, src entropy.Source) []*Lot {
	if origin.Population() == 0 {
		return nil
	}
	n := entropy.D6(src)
	lots := make([]*Lot, 0, n)
	for i := 0; i < n; i++ {
		lots = append(lots, NewLot(origin, src))
	}
	return lots
}

func generateLotMass(src entropy.Source) int {
	for {
		m := entropy.LogNormal(src, lotMassMu, lotMassSigma)
		if m >= minLotMass && m <= maxLotMass {
			return int(math.Round(m))
		}
	}
}

// pricingCodes returns the sorted origin codes that affect pricing.
func pricingCodes(codes []string) []string {
	var out []string
	for _, c := range codes {
		if _, ok := BuyingEffects[c]; ok && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

func lotID(tl int, codes []string, value int) string {
	id := string(world.ToEHex(tl))
	if len(codes) > 0 {
		id += "-" + strings.Join(codes, " ")
	}
	return fmt.Sprintf("%s %d", id, value)
}
