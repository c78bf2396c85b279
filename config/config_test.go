package config

import "testing"

func validParams() Params {
	return Params{
		Lambda:  3.0,
		Nmax:    10,
		Keep:    500,
		KeepMin: 10,
		BetaBar: 1.0,
	}
}

func TestValidateOK(t *testing.T) {
	p := validParams()
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsBadLambda(t *testing.T) {
	p := validParams()
	p.Lambda = 0.5
	if err := p.Validate(); err == nil {
		t.Errorf("Validate() = nil, want error for Lambda <= 1")
	}
}

func TestValidateRejectsKeepMinAboveKeep(t *testing.T) {
	p := validParams()
	p.KeepMin = 1000
	if err := p.Validate(); err == nil {
		t.Errorf("Validate() = nil, want error for KeepMin > Keep")
	}
}

func TestValidateRejectsBadStopAfter(t *testing.T) {
	p := validParams()
	p.StopAfter = "bogus"
	if err := p.Validate(); err == nil {
		t.Errorf("Validate() = nil, want error for bad StopAfter")
	}
}

func TestStrategyString(t *testing.T) {
	if StrategyAll.String() != "all" {
		t.Errorf("StrategyAll.String() = %q, want \"all\"", StrategyAll.String())
	}
	if StrategyKept.String() != "kept" {
		t.Errorf("StrategyKept.String() = %q, want \"kept\"", StrategyKept.String())
	}
}
