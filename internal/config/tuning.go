// Package config defines the tuning configuration for the projection
// pipeline. Every empirically-calibrated constant lives here and is
// threaded explicitly into pipeline construction, never read from a
// global, so parameter sweeps can run many configurations side by side.
package config

import (
	"github.com/halverson/pennantcast/internal/curve"
)

// TuningConfig is a named set of pipeline constants.
type TuningConfig struct {
	Name        string            `yaml:"name"`
	Pitcher     PitcherTuning     `yaml:"pitcher"`
	Batter      BatterTuning      `yaml:"batter"`
	Roster      RosterTuning      `yaml:"roster"`
	Calibration CalibrationTuning `yaml:"calibration"`
}

// PitcherTuning groups every pitcher-side constant.
type PitcherTuning struct {
	YearWeights []float64           `yaml:"year_weights"`
	MinInnings  float64             `yaml:"min_innings"`
	League      PitcherLeague       `yaml:"league"`
	Regression  PitcherRegression   `yaml:"regression"`
	Codec       PitcherCodec        `yaml:"codec"`
	Aging       []PitcherAgeBracket `yaml:"aging"`
	Ensemble    EnsembleTuning      `yaml:"ensemble"`
	Playtime    PitcherPlaytime     `yaml:"playtime"`
	WAR         PitcherWAR          `yaml:"war"`
}

// BatterTuning groups every batter-side constant.
type BatterTuning struct {
	YearWeights []float64          `yaml:"year_weights"`
	MinPA       int                `yaml:"min_pa"`
	League      BatterLeague       `yaml:"league"`
	Regression  BatterRegression   `yaml:"regression"`
	Codec       BatterCodec        `yaml:"codec"`
	Aging       []BatterAgeBracket `yaml:"aging"`
	Ensemble    EnsembleTuning     `yaml:"ensemble"`
	Playtime    BatterPlaytime     `yaml:"playtime"`
	WAR         BatterWAR          `yaml:"war"`
}

// PitcherLeague holds league-average per-nine rates.
type PitcherLeague struct {
	K9  float64 `yaml:"k9"`
	BB9 float64 `yaml:"bb9"`
	HR9 float64 `yaml:"hr9"`
}

// BatterLeague holds league-average batting rates.
type BatterLeague struct {
	BBPct  float64 `yaml:"bb_pct"`
	KPct   float64 `yaml:"k_pct"`
	HRPct  float64 `yaml:"hr_pct"`
	AVG    float64 `yaml:"avg"`
	SBRate float64 `yaml:"sb_rate"`
	CSRate float64 `yaml:"cs_rate"`
}

// StatRegression holds the per-stat regression constants. Stabilization
// is the opportunity count at which regression pulls the observed rate
// halfway to the target. OffsetScale converts the tier curve's abstract
// offset units into stat units. LowerIsBetter flips the offset sign for
// stats where smaller numbers mean more skill; it is explicit per stat,
// never inferred.
type StatRegression struct {
	Stabilization float64 `yaml:"stabilization"`
	OffsetScale   float64 `yaml:"offset_scale"`
	LowerIsBetter bool    `yaml:"lower_is_better"`
}

// PitcherRegression holds regression constants for the pitching stats.
// TargetOffsets and StrengthMultipliers are keyed by the FIP-like skill
// proxy; both are single-source tables shared by every consumer.
type PitcherRegression struct {
	ReferenceInnings    float64        `yaml:"reference_innings"`
	StrengthScale       float64        `yaml:"strength_scale"`
	TargetOffsets       curve.Curve    `yaml:"target_offsets"`
	StrengthMultipliers curve.Curve    `yaml:"strength_multipliers"`
	K9                  StatRegression `yaml:"k9"`
	BB9                 StatRegression `yaml:"bb9"`
	HR9                 StatRegression `yaml:"hr9"`
}

// BatterRegression holds regression constants for the batting stats,
// keyed by the wOBA-like skill proxy.
type BatterRegression struct {
	ReferencePA         float64        `yaml:"reference_pa"`
	StrengthScale       float64        `yaml:"strength_scale"`
	TargetOffsets       curve.Curve    `yaml:"target_offsets"`
	StrengthMultipliers curve.Curve    `yaml:"strength_multipliers"`
	BBPct               StatRegression `yaml:"bb_pct"`
	KPct                StatRegression `yaml:"k_pct"`
	HRPct               StatRegression `yaml:"hr_pct"`
	AVG                 StatRegression `yaml:"avg"`
	SBRate              StatRegression `yaml:"sb_rate"`
	CSRate              StatRegression `yaml:"cs_rate"`
}

// PitcherCodec maps each pitching rate stat to its rating table. Each
// table is a monotonic piecewise-linear curve from rate to rating on the
// 0-100 scale; the same table serves both directions.
type PitcherCodec struct {
	K9  curve.Curve `yaml:"k9"`
	BB9 curve.Curve `yaml:"bb9"`
	HR9 curve.Curve `yaml:"hr9"`
}

// BatterCodec maps each batting rate stat to its rating table on the
// 20-80 scouting scale.
type BatterCodec struct {
	BBPct curve.Curve `yaml:"bb_pct"`
	KPct  curve.Curve `yaml:"k_pct"`
	HRPct curve.Curve `yaml:"hr_pct"`
	AVG   curve.Curve `yaml:"avg"`
}

// PitcherAgeBracket holds additive rating deltas for ages up to and
// including MaxAge. Brackets are ordered; the last bracket should have a
// MaxAge large enough to catch every age.
type PitcherAgeBracket struct {
	MaxAge int     `yaml:"max_age"`
	K9     float64 `yaml:"k9"`
	BB9    float64 `yaml:"bb9"`
	HR9    float64 `yaml:"hr9"`
}

// BatterAgeBracket holds additive rating deltas for the batter skill
// components, on the 20-80 scale.
type BatterAgeBracket struct {
	MaxAge   int     `yaml:"max_age"`
	Contact  float64 `yaml:"contact"`
	Patience float64 `yaml:"patience"`
	AvoidK   float64 `yaml:"avoid_k"`
	Power    float64 `yaml:"power"`
}

// EnsembleTuning controls the three-scenario blend.
type EnsembleTuning struct {
	BaseOptimistic  float64 `yaml:"base_optimistic"`
	BaseNeutral     float64 `yaml:"base_neutral"`
	BasePessimistic float64 `yaml:"base_pessimistic"`
	AgingDampening  float64 `yaml:"aging_dampening"`
	PeakAge         int     `yaml:"peak_age"`
	AgeShift        float64 `yaml:"age_shift"`
	ConfidenceShift float64 `yaml:"confidence_shift"`
	TrendWeight     float64 `yaml:"trend_weight"`
	MinPriorVolume  float64 `yaml:"min_prior_volume"`
}

// RoleInnings bounds the modeled innings for one pitching role.
type RoleInnings struct {
	Base       float64 `yaml:"base"`
	PerStamina float64 `yaml:"per_stamina"`
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
}

// PitcherPlaytime controls the innings projection.
type PitcherPlaytime struct {
	Stamina          float64     `yaml:"stamina"`
	Starter          RoleInnings `yaml:"starter"`
	Swingman         RoleInnings `yaml:"swingman"`
	Reliever         RoleInnings `yaml:"reliever"`
	SkillSlope       float64     `yaml:"skill_slope"`
	SkillMin         float64     `yaml:"skill_min"`
	SkillMax         float64     `yaml:"skill_max"`
	ModelWeight      float64     `yaml:"model_weight"`
	MinHistoryYears  int         `yaml:"min_history_years"`
	AgeCliff         curve.Curve `yaml:"age_cliff"`
	EliteFIP         float64     `yaml:"elite_fip"`
	EliteBonusPerRun float64     `yaml:"elite_bonus_per_run"`
	EliteBonusCap    float64     `yaml:"elite_bonus_cap"`
}

// BatterPlaytime controls the plate-appearance projection.
type BatterPlaytime struct {
	MaxPA            float64     `yaml:"max_pa"`
	AgeCurve         curve.Curve `yaml:"age_curve"`
	TrustBase        float64     `yaml:"trust_base"`
	TrustPerYear     float64     `yaml:"trust_per_year"`
	TrustCap         float64     `yaml:"trust_cap"`
	PartialSeasonCap float64     `yaml:"partial_season_cap"`
	FloorPA          float64     `yaml:"floor_pa"`
	CeilPA           float64     `yaml:"ceil_pa"`
}

// PitcherWAR controls the FIP-based WAR conversion. EliteMultiplier is
// an acknowledged compression correction fitted against historical
// seasons; the asymmetric shape is intentional.
type PitcherWAR struct {
	FIPConstant     float64     `yaml:"fip_constant"`
	ReplacementFIP  float64     `yaml:"replacement_fip"`
	RunsPerWin      float64     `yaml:"runs_per_win"`
	EliteMultiplier curve.Curve `yaml:"elite_multiplier"`
	EliteScale      float64     `yaml:"elite_scale"`
}

// BatterWAR controls the wOBA-based WAR conversion.
type BatterWAR struct {
	LeagueWOBA           float64 `yaml:"league_woba"`
	WOBAScale            float64 `yaml:"woba_scale"`
	RunsPerWin           float64 `yaml:"runs_per_win"`
	ReplacementRunsPerPA float64 `yaml:"replacement_runs_per_pa"`
	WalkWeight           float64 `yaml:"walk_weight"`
	SingleWeight         float64 `yaml:"single_weight"`
	DoubleWeight         float64 `yaml:"double_weight"`
	TripleWeight         float64 `yaml:"triple_weight"`
	HomeRunWeight        float64 `yaml:"home_run_weight"`
	DoublesShareBase     float64 `yaml:"doubles_share_base"`
	DoublesSharePerAVG   float64 `yaml:"doubles_share_per_avg"`
	TriplesShare         float64 `yaml:"triples_share"`
	StolenBaseRuns       float64 `yaml:"stolen_base_runs"`
	CaughtStealingRuns   float64 `yaml:"caught_stealing_runs"`
}

// RosterTuning controls role classification and roster bucketing.
type RosterTuning struct {
	RotationSize      int     `yaml:"rotation_size"`
	BullpenCap        int     `yaml:"bullpen_cap"`
	LineupSize        int     `yaml:"lineup_size"`
	BenchCap          int     `yaml:"bench_cap"`
	StarterGSPerYear  float64 `yaml:"starter_gs_per_year"`
	SwingmanGSPerYear float64 `yaml:"swingman_gs_per_year"`
}

// CalibrationTuning controls the WAR-to-wins fit.
type CalibrationTuning struct {
	Piecewise         bool `yaml:"piecewise"`
	GamesPerSeason    int  `yaml:"games_per_season"`
	MinTeamsPerSeason int  `yaml:"min_teams_per_season"`
}
