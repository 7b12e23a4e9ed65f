package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
)

type recordsFlags struct {
	repo   string
	number int
}

func (f recordsFlags) key() (approval.Key, error) {
	if f.repo == "" || f.number <= 0 {
		return approval.Key{}, errors.New("--repo and a positive --pr are required")
	}
	return approval.Key{Repo: f.repo, Number: f.number}, nil
}

func newRecordsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect or clear stored approval records",
	}
	cmd.AddCommand(newRecordsShowCommand(opts), newRecordsClearCommand(opts))
	return cmd
}

func newRecordsShowCommand(opts *Options) *cobra.Command {
	var flags recordsFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the approval record of every tracked commit of a pull request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			cfg, logger, err := load(opts)
			if err != nil {
				return err
			}
			repo, closeStore, err := openStore(cmd.Context(), cfg.Store, false, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			commits, err := repo.ListCommits(cmd.Context(), key)
			if err != nil {
				return err
			}
			return writeRecords(cmd.OutOrStdout(), key, commits)
		},
	}
	bindRecordsFlags(cmd, &flags)
	return cmd
}

func newRecordsClearCommand(opts *Options) *cobra.Command {
	var flags recordsFlags
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every approval record of a pull request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			cfg, logger, err := load(opts)
			if err != nil {
				return err
			}
			repo, closeStore, err := openStore(cmd.Context(), cfg.Store, false, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := repo.DeleteAll(cmd.Context(), key); err != nil {
				return err
			}
			logger.Info().Str("pr", key.String()).Msg("approval records cleared")
			return nil
		},
	}
	bindRecordsFlags(cmd, &flags)
	return cmd
}

func bindRecordsFlags(cmd *cobra.Command, flags *recordsFlags) {
	cmd.Flags().StringVar(&flags.repo, "repo", "", "Repository full name (owner/repo)")
	cmd.Flags().IntVar(&flags.number, "pr", 0, "Pull request number")
}

type commitRecord struct {
	Commit string `json:"commit"`
	*approval.Record
}

func writeRecords(w io.Writer, key approval.Key, commits map[string]*approval.Record) error {
	out := struct {
		Repo    string         `json:"repo"`
		Number  int            `json:"number"`
		Commits []commitRecord `json:"commits"`
	}{Repo: key.Repo, Number: key.Number, Commits: make([]commitRecord, 0, len(commits))}

	for sha, rec := range commits {
		out.Commits = append(out.Commits, commitRecord{Commit: sha, Record: rec})
	}
	sort.Slice(out.Commits, func(i, j int) bool { return out.Commits[i].Commit < out.Commits[j].Commit })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}
