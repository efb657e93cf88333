package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/rubric/internal/parquet"
)

// ExecuteHistoryExport writes the stored runs and criterion scores to Parquet files
// named after outputFile.
func ExecuteHistoryExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("score history is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no score history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total criterion scores: %d\n", status.TotalScoreRows)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	scores, err := store.GetAllCriterionScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve criterion scores: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetScores := parquet.ConvertCriterionScoreRecords(scores)
	scoresFile := outputFile + ".criterion_scores.parquet"
	if err := parquet.WriteCriterionScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write criterion scores: %w", err)
	}
	fmt.Printf("Exported %d criterion scores to: %s\n", len(parquetScores), scoresFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, pandas or Spark.")
	return nil
}
