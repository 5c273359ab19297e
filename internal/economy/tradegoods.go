package economy

import (
	"slices"

	"github.com/talgya/merchant-lanes/internal/entropy"
)

// GeneralCargo names lots from worlds with no trade-goods table.
const GeneralCargo = "General Cargo"

// imbalances is the goods type whose entries name another classification
// to reroll against.
const imbalances = "Imbalances"

// maxRerolls bounds chains of imbalance entries.
const maxRerolls = 8

type goodsType struct {
	name  string
	goods [6]string
}

// goodsTable is one classification's six goods types; 1D6 picks the type
// and 1D6 the good.
type goodsTable [6]goodsType

var ag1Goods = goodsTable{
	{"Raws", [6]string{"Bulk Protein", "Bulk Carbs", "Bulk Fats", "Bulk Pharma", "Livestock", "Seedstock"}},
	{"Consumables", [6]string{"Flavored Waters", "Wines", "Juices", "Nectars", "Deconcoctions", "Drinkable Lymphs"}},
	{"Pharma", [6]string{"Health Foods", "Nutraceuticals", "Fast Drug", "Painkillers", "Antiseptic", "Antibiotics"}},
	{"Novelties", [6]string{"Incenses", "Iridescents", "Photonics", "Pigments", "Noisemakers", "Soundmakers"}},
	{"Rares", [6]string{"Fine Furs", "Meat Delicacies", "Fruit Delicacies", "Candies", "Textiles", "Exotic Sauces"}},
	{imbalances, [6]string{"As", "De", "Fl", "Ic", "Na", "In"}},
}

var ag2Goods = goodsTable{
	{"Raws", [6]string{"Bulk Woods", "Bulk Pelts", "Bulk Herbs", "Bulk Spices", "Bulk Nitrates", "Foodstuffs"}},
	{"Consumables", [6]string{"Flowers", "Aromatics", "Pheromones", "Secretions", "Adhesives", "Novel Flavorings"}},
	{"Pharma", [6]string{"Antifungals", "Antivirals", "Panacea", "Pseudomones", "Anagathics", "Slow Drug"}},
	{"Novelties", [6]string{"Strange Seeds", "Motile Plants", "Reactive Plants", "Reactive Woods", "IR Emitters", "Lek Emitters"}},
	{"Rares", [6]string{"Spices", "Organic Gems", "Flavorings", "Aged Meats", "Fermented Fluids", "Fine Aromatics"}},
	{imbalances, [6]string{"Po", "Ri", "Va", "Ic", "Na", "In"}},
}

var capitalGoods = goodsTable{
	{"Data", [6]string{"Software", "Expert Systems", "Databases", "Upgrades", "Backups", "Raw Sensings"}},
	{"Novelties", [6]string{"Incenses", "Contemplatives", "Cold Welders", "Polymer Sheets", "Hats", "Skin Tones"}},
	{"Consumables", [6]string{"Branded Clothes", "Branded Devices", "Flavored Drinks", "Flavorings", "Decorations", "Group Symbols"}},
	{"Rares", [6]string{"Monumental Art", "Holo Scripture", "Collectible Books", "Jewelry", "Museum Items", "Monumental Art"}},
	{"Valuata", [6]string{"Coinage", "Currency", "Money Cards", "Gold", "Silver", "Platinum"}},
	{"Red Tape", [6]string{"Regulations", "Synchronizations", "Expert Systems", "Educationals", "Mandates", "Accountings"}},
}

// tradeGoods holds the random trade goods tables by classification.
// Ag has two tables (Ga and Fa use one each); the capital codes share one.
var tradeGoods = map[string]goodsTable{
	"Ga": ag1Goods,
	"Fa": ag2Goods,
	"As": {
		{"Raws", [6]string{"Bulk Nitrates", "Bulk Carbon", "Bulk Iron", "Bulk Copper", "Radioactive Ores", "Bulk Ices"}},
		{"Samples", [6]string{"Ores", "Ices", "Carbons", "Metals", "Uranium", "Chelates"}},
		{"Valuata", [6]string{"Platinum", "Gold", "Gallium", "Silver", "Thorium", "Radium"}},
		{"Novelties", [6]string{"Unusual Rocks", "Fused Metals", "Strange Crystals", "Fine Dusts", "Magnetics", "Light-Sensitives"}},
		{"Rares", [6]string{"Gemstones", "Alloys", "Iridium Sponge", "Lanthanum", "Isotopes", "Anti-Matter"}},
		{imbalances, [6]string{"Ag", "De", "Na", "Po", "Ri", "Ic"}},
	},
	"De": {
		{"Raws", [6]string{"Bulk Nitrates", "Bulk Minerals", "Bulk Abrasives", "Bulk Particulates", "Exotic Fauna", "Exotic Flora"}},
		{"Samples", [6]string{"Archeologicals", "Fauna", "Flora", "Minerals", "Ephemerals", "Polymers"}},
		{"Pharma", [6]string{"Stimulants", "Bulk Herbs", "Paliatives", "Pheromones", "Antibiotics", "Combat Drug"}},
		{"Novelties", [6]string{"Envirosuits", "Reclamation Suits", "Navigators", "Dupe Masterpieces", "ShimmerCloth", "ANIFX Blocker"}},
		{"Rares", [6]string{"Excretions", "Flavorings", "Nectars", "Pelts", "ANIFX Dyes", "Seedstock"}},
		{"Uniques", [6]string{"Pheromones", "Artifacts", "Sparx", "Repulsant", "Dominants", "Fossils"}},
	},
	"Fl": {
		{"Raws", [6]string{"Bulk Carbon", "Bulk Petros", "Bulk Precipiates", "Exotic Fluids", "Organic Polymers", "Bulk Synthetics"}},
		{"Samples", [6]string{"Archeologicals", "Fauna", "Flora", "Germanes", "Flill", "Chelates"}},
		{"Pharma", [6]string{"Antifungals", "Antivirals", "Paliatives", "Counter-prions", "Antibiotics", "Cold Sleep Pills"}},
		{"Novelties", [6]string{"Silanes", "Lek Emitters", "Aware Blockers", "Soothants", "Self-Solving Puzzles", "Fluidic Timepieces"}},
		{"Rares", [6]string{"Flavorings", "Unusual Fluids", "Encapsulants", "Insidiants", "Corrosives", "Exotic Aromatics"}},
		{imbalances, [6]string{"In", "Ri", "Ic", "Na", "Ag", "Po"}},
	},
	"Ic": {
		{"Raws", [6]string{"Bulk Ices", "Bulk Precipitates", "Bulk Ephemerals", "Exotic Flora", "Bulk Gases", "Bulk Oxygen"}},
		{"Samples", [6]string{"Archeologicals", "Fauna", "Flora", "Minerals", "Luminescents", "Polymers"}},
		{"Pharma", [6]string{"Antifungals", "Antivirals", "Palliatives", "Restoratives", "Antibiotics", "Antiseptics"}},
		{"Novelties", [6]string{"Heat Pumps", "Mag Emitters", "Percept Blockers", "Silanes", "Cold Light Blocks", "VHDUS Blocker"}},
		{"Rares", [6]string{"Unusual Ices", "Cyro Alloys", "Rare Minerals", "Unusual Fluids", "Cryogems", "VHDUS Dyes"}},
		{"Uniques", [6]string{"Fossils", "Cyrogems", "Vision Suppressant", "Fission Suppressant", "Wafers", "Cold Sleep Pills"}},
	},
	"Na": {
		{"Raws", [6]string{"Bulk Abrasives", "Bulk Gases", "Bulk Minerals", "Bulk Precipitates", "Exotic Fauna", "Exotic Flora"}},
		{"Samples", [6]string{"Archeologicals", "Fauna", "Flora", "Minerals", "Ephemerals", "Polymers"}},
		{"Novelties", [6]string{"Branded Tools", "Drinkable Lymphs", "Strange Seeds", "Pattern Creators", "Pigments", "Warm Leather"}},
		{"Rares", [6]string{"Hummingsand", "Masterpieces", "Fine Carpets", "Isotopes", "Pelts", "Seedstock"}},
		{"Uniques", [6]string{"Masterpieces", "Unusual Rocks", "Artifacts", "Non-Fossil Carca", "Replicating Clays", "ANIFX Emitter"}},
		{imbalances, [6]string{"Ag", "Ri", "In", "Ic", "De", "Fl"}},
	},
	"In": {
		{"Manufactureds", [6]string{"Electronics", "Photonics", "Magnetics", "Fluidics", "Polymers", "Gravitics"}},
		{"Scrap / Waste", [6]string{"Obsoletes", "Used Goods", "Reparables", "Radioactives", "Metals", "Sludges"}},
		{"Manufactureds", [6]string{"Biologics", "Mechanicals", "Textiles", "Weapons", "Armor", "Robots"}},
		{"Pharma", [6]string{"Nostrums", "Restoratives", "Palliatives", "Chelates", "Antidotes", "Antitoxins"}},
		{"Data", [6]string{"Software", "Databases", "Expert Systems", "Upgrades", "Backups", "Raw Sensings"}},
		{"Consumables", [6]string{"Disposables", "Respirators", "Filter Masks", "Combination", "Parts", "Improvements"}},
	},
	"Po": {
		{"Raws", [6]string{"Bulk Nutrients", "Bulk Fibers", "Bulk Organics", "Bulk Minerals", "Bulk Textiles", "Exotic Flora"}},
		{"Entertainments", [6]string{"Art", "Recordings", "Writings", "Tactiles", "Osmancies", "Wafers"}},
		{"Novelties", [6]string{"Strange Crystals", "Strange Seeds", "Pigments", "Emotion Lighting", "Silanes", "Flora"}},
		{"Rares", [6]string{"Gemstones", "Antiques", "Collectibles", "Allotropes", "Spices", "Seedstock"}},
		{"Uniques", [6]string{"Masterpieces", "Exotic Flora", "Antiques", "Incomprehensibles", "Fossiles", "VHDUS Emitter"}},
		{imbalances, [6]string{"In", "Ri", "Fl", "Ic", "Ag", "Va"}},
	},
	"Ri": {
		{"Raws", [6]string{"Bulk Foodstuffs", "Bulk Protein", "Bulk Carbs", "Bulk Fats", "Exotic Flora", "Exotic Fauna"}},
		{"Novelties", [6]string{"Echostones", "Self-Defenders", "Attractants", "Sophont Cuisine", "Sophont Hats", "Variable Tattoos"}},
		{"Consumables", [6]string{"Branded Foods", "Branded Drinks", "Branded Clothes", "Branded Drinks", "Flowers", "Music"}},
		{"Rares", [6]string{"Delicacies", "Spices", "Tisanes", "Nectars", "Pelts", "Variable Tattoos"}},
		{"Uniques", [6]string{"Antique Art", "Masterpieces", "Artifacts", "Fine Art", "Meson Barriers", "Famous Wafers"}},
		{"Entertainments", [6]string{"Edutainments", "Recordings", "Writings", "Tactiles", "Osmancies", "Wafers"}},
	},
	"Va": {
		{"Raws", [6]string{"Bulk Dusts", "Bulk Minerals", "Bulk Metals", "Radioactive Ores", "Bulk Particulates", "Ephemerals"}},
		{"Novelties", [6]string{"Branded Vacc Suits", "Awareness Pinger", "Strange Seeds", "Pigments", "Unusual Minerals", "Exotic Crystals"}},
		{"Consumables", [6]string{"Branded Foods", "Branded Drinks", "Branded Clothes", "Flavored Drinks", "Flowers", "Music"}},
		{"Rares", [6]string{"Delicacies", "Spices", "Tisanes", "Nectars", "Pelts", "Variable Tattoos"}},
		{"Samples", [6]string{"Archeologicals", "Fauna", "Flora", "Minerals", "Ephemerals", "Polymers"}},
		{"Scrap / Waste", [6]string{"Obsoletes", "Used Goods", "Reparables", "Plutonium", "Metals", "Sludges"}},
	},
	"Cp": capitalGoods,
	"Cs": capitalGoods,
	"Cx": capitalGoods,
}

// goodsFor returns the table for a classification. Ag rolls 1D6 between
// its two tables.
func goodsFor(code string, src entropy.Source) (goodsTable, bool) {
	if code == "Ag" {
		if entropy.D6(src) <= 3 {
			return ag1Goods, true
		}
		return ag2Goods, true
	}
	t, ok := tradeGoods[code]
	return t, ok
}

// HasTradeGoods reports whether code has a trade-goods table.
func HasTradeGoods(code string) bool {
	_, ok := tradeGoods[code]
	return ok || code == "Ag"
}

// TradeGood is a rolled trade good. Imbalance names the classification
// the good was last rerolled against; the lot fetches MatchBonus more per
// ton on a market with that code.
type TradeGood struct {
	Name      string
	Imbalance string
}

// RollTradeGood rolls a good for a lot from a world with the given codes.
// Codes without a table are ignored; if none has one the lot is general
// cargo.
func RollTradeGood(codes []string, src entropy.Source) TradeGood {
	var usable []string
	for _, c := range codes {
		if HasTradeGoods(c) && !slices.Contains(usable, c) {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return TradeGood{Name: GeneralCargo}
	}
	code := usable[src.Intn(len(usable))]

	var g TradeGood
	for i := 0; i <= maxRerolls; i++ {
		table, _ := goodsFor(code, src)
		kind := table[entropy.D6(src)-1]
		pick := kind.goods[entropy.D6(src)-1]
		if kind.name != imbalances {
			g.Name = pick
			return g
		}
		g.Imbalance = pick
		code = pick
	}
	g.Name = GeneralCargo
	return g
}

// String renders the good the way it appears on a manifest.
func (g TradeGood) String() string {
	if g.Imbalance == "" {
		return g.Name
	}
	return "Imbalance from " + g.Imbalance + ": " + g.Name
}
