package combat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/dice"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

// Kind names what was resolved.
type Kind string

const (
	KindAttack Kind = "attack"
	KindCast   Kind = "cast"
	KindCheck  Kind = "check"
)

// Options tune a Resolver.
type Options struct {
	// Bands decides which faces score successes. Zero value means dice.DefaultBands.
	Bands dice.Bands
	// DefaultCritical applies to weapons and spells without their own critical
	// rating. Zero means DefaultCriticalThreshold.
	DefaultCritical int
}

// Resolver runs resolutions against an injected Roller.
type Resolver struct {
	roller dice.Roller
	opts   Options
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: roller must be non-nil. A nil logger disables logging.
func NewResolver(roller dice.Roller, opts Options, logger *zap.Logger) *Resolver {
	if opts.Bands == (dice.Bands{}) {
		opts.Bands = dice.DefaultBands
	}
	if opts.DefaultCritical <= 0 {
		opts.DefaultCritical = DefaultCriticalThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{roller: roller, opts: opts, logger: logger}
}

// AttackRequest is everything an attack needs, already collected from the user.
type AttackRequest struct {
	Attributes character.Attributes
	Weapon     *character.Item
	// Skill is the attacker's skill governing Weapon; nil rolls untrained.
	Skill *character.Item
	// Target is optional; without one, DT must be supplied.
	Target *Target
	// Facing is the attacker's belief about how Target faces them.
	Facing character.Facing
	// DT is a manually supplied difficulty, used only when Target is nil.
	DT *int
}

// CastRequest is everything a spell cast needs.
type CastRequest struct {
	Attributes character.Attributes
	Spell      *character.Item
	// Skill is the casting skill; nil rolls untrained.
	Skill  *character.Item
	Target *Target
	Facing character.Facing
	// DT overrides the spell's own difficulty when Target is nil.
	DT *int
}

// CheckRequest is a plain skill or attribute check against a DT.
type CheckRequest struct {
	Attributes character.Attributes
	// Skill is used when set; otherwise Attribute names what is rolled untrained.
	Skill     *character.Item
	Attribute string
	MiscBonus int
	DT        *int
}

// Resolution is the audit record of one resolution. When Status is
// issue.Aborted nothing was rolled and only the fields up to the abort are set.
type Resolution struct {
	Kind   Kind
	Status issue.Kind
	Stages []Stage
	Issues []issue.Issue

	Target *TargetView
	DT     int
	Pool   int
	Roll   dice.Result

	Succeeded         bool
	Excess            int
	CriticalThreshold int
	CanCritical       bool

	BaseDamage  int
	DamageBonus int
	TotalDamage int
	HalfDamage  int

	Mishap Mishap
}

// Aborted reports whether the resolution was cancelled before rolling.
func (r Resolution) Aborted() bool { return r.Status == issue.Aborted }

// Attack resolves a weapon attack.
//
// Postcondition: an error is returned only for roller failures other than
// cancellation. A missing target and DT, or a context done before rolling,
// yields an Aborted resolution with no roll.
func (r *Resolver) Attack(ctx context.Context, req AttackRequest) (Resolution, error) {
	if req.Weapon == nil || req.Weapon.Weapon == nil {
		return Resolution{}, fmt.Errorf("combat: attack requires a weapon item")
	}
	w := req.Weapon.Weapon
	res := Resolution{Kind: KindAttack}

	dt, ok := r.selectDifficulty(&res, req.Target, req.Facing, w.Melee, req.DT)
	if !ok {
		return r.abort(res, "no target and no difficulty supplied"), nil
	}
	res.DT = dt

	var skill *character.Skill
	if req.Skill != nil {
		skill = req.Skill.Skill
	}
	pool, known := dice.WeaponPool(req.Attributes, w, skill)
	if !known {
		res.Issues = append(res.Issues, issue.Invalid("weapon.attribute", "no known attribute for %q; contributes 0", w.Attribute))
	}
	res.Pool = pool

	if err := r.roll(ctx, &res); err != nil {
		if errors.Is(err, errAborted) {
			return res, nil
		}
		return Resolution{}, err
	}

	res.BaseDamage = w.Damage
	res.DamageBonus = DamageBonus(w, req.Attributes)
	res.TotalDamage = res.BaseDamage + res.DamageBonus
	res.HalfDamage = HalfDamage(res.TotalDamage)
	r.outcome(&res, w.Critical, false)
	return res, nil
}

// Cast resolves a spell cast. A failed cast carries a mishap severity.
func (r *Resolver) Cast(ctx context.Context, req CastRequest) (Resolution, error) {
	if req.Spell == nil || req.Spell.Spell == nil {
		return Resolution{}, fmt.Errorf("combat: cast requires a spell item")
	}
	sp := req.Spell.Spell
	res := Resolution{Kind: KindCast}

	manual := req.DT
	if manual == nil && sp.Difficulty > 0 {
		d := sp.Difficulty
		manual = &d
	}
	dt, ok := r.selectDifficulty(&res, req.Target, req.Facing, false, manual)
	if !ok {
		return r.abort(res, "no target and no difficulty supplied"), nil
	}
	res.DT = dt

	skill := &character.Skill{Rank: character.RankUntrained}
	if req.Skill != nil && req.Skill.Skill != nil {
		skill = req.Skill.Skill
	}
	pool, known := dice.SkillPool(req.Attributes, skill)
	if !known {
		res.Issues = append(res.Issues, issue.Invalid("skill.attribute", "unknown attribute %q contributes 0", skill.Attribute))
	}
	res.Pool = pool

	if err := r.roll(ctx, &res); err != nil {
		if errors.Is(err, errAborted) {
			return res, nil
		}
		return Resolution{}, err
	}

	res.BaseDamage = sp.Damage
	res.TotalDamage = sp.Damage
	res.HalfDamage = HalfDamage(sp.Damage)
	r.outcome(&res, sp.Critical, true)
	return res, nil
}

// Check resolves a plain check against a manual DT.
func (r *Resolver) Check(ctx context.Context, req CheckRequest) (Resolution, error) {
	res := Resolution{Kind: KindCheck}
	dt, ok := r.selectDifficulty(&res, nil, "", false, req.DT)
	if !ok {
		return r.abort(res, "no difficulty supplied"), nil
	}
	res.DT = dt

	skill := &character.Skill{Rank: character.RankUntrained, Attribute: req.Attribute}
	if req.Skill != nil && req.Skill.Skill != nil {
		skill = req.Skill.Skill
	}
	// The check's misc bonus joins the skill's before the pool is floored.
	attr, known := dice.CombinedAttribute(req.Attributes, skill.Attribute)
	if !known {
		res.Issues = append(res.Issues, issue.Invalid("attribute", "unknown attribute %q contributes 0", skill.Attribute))
	}
	res.Pool = dice.Pool(attr, skill.Rank, skill.MiscBonus+req.MiscBonus)

	if err := r.roll(ctx, &res); err != nil {
		if errors.Is(err, errAborted) {
			return res, nil
		}
		return Resolution{}, err
	}
	r.outcome(&res, 0, false)
	return res, nil
}

// errAborted signals that roll already turned res into an Aborted resolution.
var errAborted = errors.New("combat: aborted")

// selectDifficulty runs the target selection and difficulty stages.
func (r *Resolver) selectDifficulty(res *Resolution, t *Target, f character.Facing, melee bool, manual *int) (int, bool) {
	res.Stages = append(res.Stages, StageTargetSelection)
	if t != nil {
		view := TargetDefenses(t, f)
		res.Target = &view
	}
	res.Stages = append(res.Stages, StageDifficulty)
	switch {
	case res.Target != nil:
		return Difficulty(*res.Target, melee), true
	case manual != nil:
		dt := *manual
		if dt < 0 {
			res.Issues = append(res.Issues, issue.Invalid("dt", "difficulty %d below 0; clamped", dt))
			dt = 0
		}
		return dt, true
	}
	return 0, false
}

func (r *Resolver) abort(res Resolution, reason string) Resolution {
	res.Status = issue.Aborted
	res.Issues = append(res.Issues, issue.Issue{Kind: issue.Aborted, Detail: reason})
	r.logger.Debug("resolution aborted", zap.String("kind", string(res.Kind)), zap.String("reason", reason))
	return res
}

// roll runs the rolling stage. A context done before or during the roll turns
// res into an Aborted resolution with no dice recorded.
func (r *Resolver) roll(ctx context.Context, res *Resolution) error {
	if ctx.Err() != nil {
		*res = r.abort(*res, "cancelled before rolling")
		return errAborted
	}
	res.Stages = append(res.Stages, StageRolling)
	result, err := dice.Resolve(ctx, r.roller, r.opts.Bands, res.Pool)
	if err != nil {
		if ctx.Err() != nil {
			res.Stages = res.Stages[:len(res.Stages)-1]
			*res = r.abort(*res, "cancelled while rolling")
			return errAborted
		}
		return fmt.Errorf("combat: rolling %d dice: %w", res.Pool, err)
	}
	res.Roll = result
	return nil
}

// outcome runs the outcome stage.
func (r *Resolver) outcome(res *Resolution, critical int, castMishap bool) {
	res.Stages = append(res.Stages, StageOutcome)
	res.Succeeded = res.Roll.Successes >= res.DT
	res.CriticalThreshold = critical
	if res.CriticalThreshold <= 0 {
		res.CriticalThreshold = r.opts.DefaultCritical
	}
	if res.Succeeded {
		res.Excess = res.Roll.Successes - res.DT
		res.CanCritical = res.Excess >= res.CriticalThreshold
	} else if castMishap {
		res.Mishap = MishapFor(res.DT, res.Roll.Successes)
	}
	r.logger.Debug("resolution",
		zap.String("kind", string(res.Kind)),
		zap.Int("pool", res.Pool),
		zap.Ints("dice", res.Roll.Dice),
		zap.Int("successes", res.Roll.Successes),
		zap.Int("dt", res.DT),
		zap.Bool("succeeded", res.Succeeded),
		zap.Int("excess", res.Excess),
		zap.Bool("can_critical", res.CanCritical),
		zap.String("mishap", string(res.Mishap)),
	)
}
