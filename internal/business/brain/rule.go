package brain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"healthbrain/common/model"
	"healthbrain/pkg/logger"
)

// RuleInput 规则执行输入
type RuleInput struct {
	Now        time.Time
	Thresholds Thresholds
	Source     RuleSource
}

// Rule 异常检测规则
// 无异常时返回空切片；出错时由 RuleEngine 吸收，不影响其他规则
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, in RuleInput) ([]model.Action, error)
}

// RuleFunc 函数式规则
type RuleFunc struct {
	RuleName string
	Fn       func(ctx context.Context, in RuleInput) ([]model.Action, error)
}

// Name 规则名
func (r RuleFunc) Name() string { return r.RuleName }

// Evaluate 执行规则
func (r RuleFunc) Evaluate(ctx context.Context, in RuleInput) ([]model.Action, error) {
	return r.Fn(ctx, in)
}

// Registry 规则注册表，按注册顺序输出
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
	names map[string]struct{}
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// DefaultRegistry 内置规则注册表
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range BuiltinRules() {
		// 内置规则名唯一
		_ = r.Register(rule)
	}
	return r
}

// Register 注册规则，重名返回错误
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[rule.Name()]; ok {
		return fmt.Errorf("rule %q already registered", rule.Name())
	}
	r.names[rule.Name()] = struct{}{}
	r.rules = append(r.rules, rule)
	return nil
}

// Rules 返回规则快照
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// RuleOutcome 规则引擎输出
type RuleOutcome struct {
	Actions []model.Action
	Failed  []string
}

// RuleEngine 并发执行注册表中的全部规则
type RuleEngine struct {
	registry *Registry
	logger   logger.Logger
	recorder Recorder
}

// NewRuleEngine 创建规则引擎
func NewRuleEngine(registry *Registry, log logger.Logger, recorder Recorder) *RuleEngine {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &RuleEngine{registry: registry, logger: log, recorder: recorder}
}

// Evaluate 并发执行规则，单条规则失败只记录日志
func (e *RuleEngine) Evaluate(ctx context.Context, in RuleInput) *RuleOutcome {
	rules := e.registry.Rules()
	results := make([][]model.Action, len(rules))
	errs := make([]error, len(rules))

	var wg sync.WaitGroup
	for i, rule := range rules {
		wg.Add(1)
		go func(i int, rule Rule) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			results[i], errs[i] = rule.Evaluate(ctx, in)
		}(i, rule)
	}
	wg.Wait()

	outcome := &RuleOutcome{Actions: make([]model.Action, 0)}
	for i, rule := range rules {
		if errs[i] != nil {
			e.logger.Errorf(ctx, "[RuleEngine] rule %s failed: %v", rule.Name(), errs[i])
			e.recorder.RuleFailed(rule.Name())
			outcome.Failed = append(outcome.Failed, rule.Name())
			continue
		}
		outcome.Actions = append(outcome.Actions, results[i]...)
	}
	return outcome
}

// newAction 构造带 ID 与时间戳的 Action
func newAction(now time.Time, typ model.ActionType, severity model.Severity, title, desc string, data *model.Evidence) model.Action {
	return model.Action{
		ID:          uuid.NewString(),
		Type:        typ,
		Title:       title,
		Description: desc,
		Severity:    severity,
		Data:        data,
		Timestamp:   now,
	}
}
