package engine

import "github.com/rs/zerolog"

// Stats collects counts for each pruning/cutoff mechanism of one search.
type Stats struct {
	Nodes            uint64
	QNodes           uint64
	TTCutoffs        uint64
	NullMoveCutoffs  uint64
	MateThreats      uint64
	RazoringCutoffs  uint64
	FutilityPrunes   uint64
	LMRReSearches    uint64
	BetaCutoffs      uint64
	QStandPatCutoffs uint64
	HiddenRepetition uint64
	AspirationMisses uint64
}

// MarshalZerologObject lets a Stats value be logged as a nested object.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes).
		Uint64("qnodes", s.QNodes).
		Uint64("tt", s.TTCutoffs).
		Uint64("null", s.NullMoveCutoffs).
		Uint64("mate-threats", s.MateThreats).
		Uint64("razor", s.RazoringCutoffs).
		Uint64("futility", s.FutilityPrunes).
		Uint64("lmr-research", s.LMRReSearches).
		Uint64("beta", s.BetaCutoffs).
		Uint64("stand-pat", s.QStandPatCutoffs).
		Uint64("hidden-repetition", s.HiddenRepetition).
		Uint64("aspiration-miss", s.AspirationMisses)
}
