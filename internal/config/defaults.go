package config

import "github.com/halverson/pennantcast/internal/curve"

// Default returns the baseline tuning configuration. The constants here
// were calibrated against historical league seasons; several of them
// (aging deltas, strength multipliers, the elite WAR multiplier and the
// asymmetric win slopes downstream) encode measured corrections and
// should not be "cleaned up" without re-deriving them.
func Default() TuningConfig {
	return TuningConfig{
		Name: "baseline",
		Pitcher: PitcherTuning{
			YearWeights: []float64{5, 3, 2},
			MinInnings:  10,
			League: PitcherLeague{
				K9:  7.9,
				BB9: 3.1,
				HR9: 1.1,
			},
			Regression: PitcherRegression{
				ReferenceInnings: 350,
				StrengthScale:    1.0,
				// Skill proxy is FIP: lower is better, so the offset
				// units fall as FIP rises.
				TargetOffsets: curve.New(
					curve.Point{X: 2.80, Y: 1.00},
					curve.Point{X: 3.30, Y: 0.70},
					curve.Point{X: 3.80, Y: 0.35},
					curve.Point{X: 4.30, Y: 0.00},
					curve.Point{X: 4.80, Y: -0.30},
					curve.Point{X: 5.50, Y: -0.60},
				),
				StrengthMultipliers: curve.New(
					curve.Point{X: 2.80, Y: 0.65},
					curve.Point{X: 3.80, Y: 0.90},
					curve.Point{X: 4.30, Y: 1.00},
					curve.Point{X: 5.00, Y: 1.15},
					curve.Point{X: 5.80, Y: 1.25},
				),
				K9:  StatRegression{Stabilization: 60, OffsetScale: 1.20},
				BB9: StatRegression{Stabilization: 90, OffsetScale: 0.50, LowerIsBetter: true},
				HR9: StatRegression{Stabilization: 140, OffsetScale: 0.25, LowerIsBetter: true},
			},
			Codec: PitcherCodec{
				// Rate -> rating tables, 0-100 scale. The K9 table is
				// two-segment: the scale compresses above average
				// strikeout rates so elite K9 does not pin at 100.
				K9: curve.New(
					curve.Point{X: 4.0, Y: 0},
					curve.Point{X: 9.0, Y: 65},
					curve.Point{X: 12.5, Y: 100},
				),
				BB9: curve.New(
					curve.Point{X: 1.0, Y: 100},
					curve.Point{X: 5.5, Y: 0},
				),
				HR9: curve.New(
					curve.Point{X: 0.2, Y: 100},
					curve.Point{X: 2.2, Y: 0},
				),
			},
			Aging: []PitcherAgeBracket{
				{MaxAge: 22, K9: 2.0, BB9: 1.5, HR9: 1.0},
				{MaxAge: 26, K9: 1.0, BB9: 1.0, HR9: 0.5},
				{MaxAge: 29, K9: 0.0, BB9: 0.0, HR9: 0.0},
				{MaxAge: 32, K9: -1.0, BB9: -0.5, HR9: -1.0},
				{MaxAge: 35, K9: -2.5, BB9: -1.0, HR9: -1.5},
				{MaxAge: 38, K9: -4.0, BB9: -2.0, HR9: -2.5},
				{MaxAge: 99, K9: -6.0, BB9: -3.0, HR9: -3.5},
			},
			Ensemble: defaultEnsemble(40),
			Playtime: PitcherPlaytime{
				Stamina:         55,
				Starter:         RoleInnings{Base: 110, PerStamina: 1.30, Min: 120, Max: 215},
				Swingman:        RoleInnings{Base: 70, PerStamina: 0.80, Min: 60, Max: 140},
				Reliever:        RoleInnings{Base: 50, PerStamina: 0.35, Min: 40, Max: 80},
				SkillSlope:      0.06,
				SkillMin:        0.85,
				SkillMax:        1.15,
				ModelWeight:     0.45,
				MinHistoryYears: 2,
				AgeCliff: curve.New(
					curve.Point{X: 35, Y: 1.00},
					curve.Point{X: 36, Y: 0.92},
					curve.Point{X: 38, Y: 0.78},
					curve.Point{X: 40, Y: 0.55},
					curve.Point{X: 43, Y: 0.35},
				),
				EliteFIP:         3.20,
				EliteBonusPerRun: 0.10,
				EliteBonusCap:    0.08,
			},
			WAR: PitcherWAR{
				FIPConstant:    3.10,
				ReplacementFIP: 5.20,
				RunsPerWin:     9.5,
				EliteMultiplier: curve.New(
					curve.Point{X: 3.00, Y: 1.20},
					curve.Point{X: 3.50, Y: 1.00},
					curve.Point{X: 6.00, Y: 1.00},
				),
				EliteScale: 1.0,
			},
		},
		Batter: BatterTuning{
			YearWeights: []float64{5, 3, 2},
			MinPA:       100,
			League: BatterLeague{
				BBPct:  0.082,
				KPct:   0.222,
				HRPct:  0.031,
				AVG:    0.248,
				SBRate: 0.012,
				CSRate: 0.004,
			},
			Regression: BatterRegression{
				ReferencePA:   1200,
				StrengthScale: 1.0,
				// Skill proxy is wOBA: higher is better.
				TargetOffsets: curve.New(
					curve.Point{X: 0.270, Y: -0.50},
					curve.Point{X: 0.290, Y: -0.25},
					curve.Point{X: 0.310, Y: 0.00},
					curve.Point{X: 0.340, Y: 0.35},
					curve.Point{X: 0.370, Y: 0.70},
					curve.Point{X: 0.400, Y: 1.00},
				),
				StrengthMultipliers: curve.New(
					curve.Point{X: 0.270, Y: 1.25},
					curve.Point{X: 0.300, Y: 1.10},
					curve.Point{X: 0.320, Y: 1.00},
					curve.Point{X: 0.360, Y: 0.85},
					curve.Point{X: 0.400, Y: 0.65},
				),
				BBPct:  StatRegression{Stabilization: 120, OffsetScale: 0.020},
				KPct:   StatRegression{Stabilization: 60, OffsetScale: 0.030, LowerIsBetter: true},
				HRPct:  StatRegression{Stabilization: 170, OffsetScale: 0.012},
				AVG:    StatRegression{Stabilization: 300, OffsetScale: 0.018},
				SBRate: StatRegression{Stabilization: 200, OffsetScale: 0},
				CSRate: StatRegression{Stabilization: 200, OffsetScale: 0, LowerIsBetter: true},
			},
			Codec: BatterCodec{
				BBPct: curve.New(
					curve.Point{X: 0.020, Y: 20},
					curve.Point{X: 0.140, Y: 80},
				),
				KPct: curve.New(
					curve.Point{X: 0.080, Y: 80},
					curve.Point{X: 0.320, Y: 20},
				),
				HRPct: curve.New(
					curve.Point{X: 0.005, Y: 20},
					curve.Point{X: 0.030, Y: 50},
					curve.Point{X: 0.065, Y: 80},
				),
				AVG: curve.New(
					curve.Point{X: 0.200, Y: 20},
					curve.Point{X: 0.320, Y: 80},
				),
			},
			Aging: []BatterAgeBracket{
				{MaxAge: 22, Contact: 1.2, Patience: 1.0, AvoidK: 0.8, Power: 1.5},
				{MaxAge: 25, Contact: 0.8, Patience: 0.8, AvoidK: 0.5, Power: 1.0},
				{MaxAge: 28, Contact: 0.0, Patience: 0.3, AvoidK: 0.0, Power: 0.3},
				{MaxAge: 31, Contact: -0.6, Patience: 0.0, AvoidK: -0.4, Power: -0.4},
				{MaxAge: 34, Contact: -1.2, Patience: -0.3, AvoidK: -0.8, Power: -1.0},
				{MaxAge: 37, Contact: -2.0, Patience: -0.8, AvoidK: -1.4, Power: -1.8},
				{MaxAge: 99, Contact: -3.0, Patience: -1.5, AvoidK: -2.2, Power: -2.8},
			},
			Ensemble: defaultEnsemble(150),
			Playtime: BatterPlaytime{
				MaxPA: 660,
				AgeCurve: curve.New(
					curve.Point{X: 20, Y: 0.55},
					curve.Point{X: 23, Y: 0.80},
					curve.Point{X: 26, Y: 1.00},
					curve.Point{X: 30, Y: 1.00},
					curve.Point{X: 33, Y: 0.88},
					curve.Point{X: 36, Y: 0.70},
					curve.Point{X: 39, Y: 0.48},
					curve.Point{X: 43, Y: 0.25},
				),
				TrustBase:        0.25,
				TrustPerYear:     0.15,
				TrustCap:         0.85,
				PartialSeasonCap: 480,
				FloorPA:          0,
				CeilPA:           740,
			},
			WAR: BatterWAR{
				LeagueWOBA:           0.315,
				WOBAScale:            1.25,
				RunsPerWin:           9.5,
				ReplacementRunsPerPA: 0.0292,
				WalkWeight:           0.69,
				SingleWeight:         0.88,
				DoubleWeight:         1.24,
				TripleWeight:         1.56,
				HomeRunWeight:        2.00,
				DoublesShareBase:     0.17,
				DoublesSharePerAVG:   0.25,
				TriplesShare:         0.02,
				StolenBaseRuns:       0.20,
				CaughtStealingRuns:   -0.425,
			},
		},
		Roster: RosterTuning{
			RotationSize:      5,
			BullpenCap:        8,
			LineupSize:        9,
			BenchCap:          5,
			StarterGSPerYear:  15,
			SwingmanGSPerYear: 5,
		},
		Calibration: CalibrationTuning{
			Piecewise:         true,
			GamesPerSeason:    162,
			MinTeamsPerSeason: 2,
		},
	}
}

// defaultEnsemble returns the shared scenario-blend defaults.
// minPriorVolume is in the role's opportunity units (innings or PA).
func defaultEnsemble(minPriorVolume float64) EnsembleTuning {
	return EnsembleTuning{
		BaseOptimistic:  0.25,
		BaseNeutral:     0.50,
		BasePessimistic: 0.25,
		AgingDampening:  0.55,
		PeakAge:         27,
		AgeShift:        0.015,
		ConfidenceShift: 0.15,
		TrendWeight:     0.50,
		MinPriorVolume:  minPriorVolume,
	}
}
