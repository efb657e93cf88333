package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/internal/formfile"
	"github.com/huangsam/rubric/schema"
	"golang.org/x/sync/errgroup"
)

// ScoreRun launches one run: it takes a fresh snapshot of form, resolves the
// answers against it and computes the total. Node explanations are only
// computed when explain is set.
func ScoreRun(form *schema.Form, def PolicyDefinition, answers *formfile.Answers, explain bool) (schema.RunResult, error) {
	if answers == nil {
		return schema.RunResult{}, errors.New("answers are nil")
	}
	snap, err := Snapshot(form, def)
	if err != nil {
		return schema.RunResult{}, err
	}
	scores, err := answers.Resolve(snap)
	if err != nil {
		return schema.RunResult{}, err
	}
	total, err := snap.Total(scores)
	if err != nil {
		return schema.RunResult{}, err
	}

	result := schema.RunResult{
		RunID:     uuid.New(),
		FormID:    snap.FormID,
		FormTitle: snap.Title,
		Source:    answers.Source,
		Policy:    snap.Policy.Kind(),
		Total:     total,
		Progress:  schema.ComputeProgress(snap, scores),
		ScoredAt:  time.Now().UTC(),
		Snapshot:  snap,
		Scores:    scores,
	}
	if explain {
		if result.Nodes, err = snap.Explain(scores); err != nil {
			return schema.RunResult{}, err
		}
	}
	return result, nil
}

// ScoreBatch scores every answer set concurrently with at most workers runs
// in flight. Results keep the order of answers. The first failure cancels
// the remaining runs and is returned.
func ScoreBatch(ctx context.Context, form *schema.Form, def PolicyDefinition, answers []*formfile.Answers, workers int, explain bool) ([]schema.RunResult, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]schema.RunResult, len(answers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, a := range answers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ScoreRun(form, def, a, explain)
			if err != nil {
				return fmt.Errorf("scoring %s: %w", sourceOf(a, i), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func sourceOf(a *formfile.Answers, i int) string {
	if a != nil && a.Source != "" {
		return a.Source
	}
	return fmt.Sprintf("answer set #%d", i+1)
}
