//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package agenteval

import (
	"fmt"
	"math"
)

// PassAtK computes the pass@k estimator over multi-run results.
//
// Given n sampled runs of which c succeeded, pass@k is the probability
// that at least one success appears among k runs drawn without
// replacement:
//
//	pass@k = 1 - C(n-c, k) / C(n, k)
//
// This is the unbiased estimator introduced by the Codex / HumanEval
// benchmarks. It uses all n samples rather than just the first k, which
// lowers variance when n > k.
//
// The combination ratio is computed in log-space via math.Lgamma so the
// estimator stays stable for realistic n:
//
//	logP = ln((n-c)!) + ln((n-k)!) - ln((n-c-k)!) - ln(n!)
//	pass@k = 1 - exp(logP)
//
// The estimator assumes the n runs are independent samples: agent state
// must be reset between runs and no session or tool cache may leak
// across them, otherwise pass@k is overestimated.
func PassAtK(n, c, k int) (float64, error) {
	if n < 0 {
		return 0.0, fmt.Errorf("n must be >= 0")
	}
	if k <= 0 {
		return 0.0, fmt.Errorf("k must be >= 1")
	}
	if c < 0 {
		return 0.0, fmt.Errorf("c must be >= 0")
	}
	if c > n {
		return 0.0, fmt.Errorf("c cannot exceed n")
	}
	if k > n {
		return 0.0, fmt.Errorf("k cannot exceed n")
	}
	// No successes observed.
	if c == 0 {
		return 0.0, nil
	}
	// Fewer than k failures exist -> at least one success guaranteed.
	if n-c < k {
		return 1.0, nil
	}
	nf := float64(n)
	cf := float64(c)
	kf := float64(k)
	a, _ := math.Lgamma(nf - cf + 1)
	b, _ := math.Lgamma(nf - kf + 1)
	d, _ := math.Lgamma(nf - cf - kf + 1)
	e, _ := math.Lgamma(nf + 1)
	// Log probability of drawing k failures.
	logP := a + b - d - e
	// 1 - exp(x) == -expm1(x), more precise when logP is close to zero.
	return -math.Expm1(logP), nil
}

// PassHatK computes the pass^k reliability estimator over multi-run
// results.
//
// The single-run success probability is estimated as p = c/n; pass^k is
// then p^k, the probability that k independent runs all succeed. Where
// pass@k measures peak capability, pass^k measures consistency.
//
// p^k is computed as exp(k * log(p)), which behaves better than pow for
// small p or large k. The independence assumptions of PassAtK apply
// here as well.
func PassHatK(n, c, k int) (float64, error) {
	if n <= 0 {
		return 0.0, fmt.Errorf("n must be > 0")
	}
	if k <= 0 {
		return 0.0, fmt.Errorf("k must be >= 1")
	}
	if c < 0 {
		return 0.0, fmt.Errorf("c must be >= 0")
	}
	if c > n {
		return 0.0, fmt.Errorf("c cannot exceed n")
	}
	// No successes observed.
	if c == 0 {
		return 0.0, nil
	}
	// All runs successful.
	if c == n {
		return 1.0, nil
	}
	p := float64(c) / float64(n)
	return math.Exp(float64(k) * math.Log(p)), nil
}

// ParsePassNC extracts (n, c) from an EvaluationResult for pass@k and
// pass^k calculations: the number of runs and the number of runs whose
// overall status was passed.
func ParsePassNC(result *EvaluationResult) (n, c int, err error) {
	if result == nil {
		return 0, 0, fmt.Errorf("evaluation result is nil")
	}
	if result.EvalResult == nil {
		return 0, 0, fmt.Errorf("eval set result is nil")
	}
	if result.EvalResult.Summary == nil {
		return 0, 0, fmt.Errorf("eval set result summary is nil")
	}
	if result.EvalResult.Summary.RunStatusCounts == nil {
		return 0, 0, fmt.Errorf("run status counts is nil")
	}
	return result.EvalResult.Summary.NumRuns, result.EvalResult.Summary.RunStatusCounts.Passed, nil
}
