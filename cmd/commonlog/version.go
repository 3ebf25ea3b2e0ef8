package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Kargones/commonlog/internal/constants"
	"github.com/Kargones/commonlog/internal/pkg/apperrors"
	"github.com/Kargones/commonlog/internal/pkg/output"
)

func newVersionCommand(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdVersion,
		Short: "Показать версию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			result := &output.Result{
				Status:  output.StatusSuccess,
				Command: constants.CmdVersion,
				Data: &output.VersionData{
					Version:   constants.Version,
					Commit:    constants.Commit,
					BuildDate: constants.BuildDate,
				},
				Metadata: &output.Metadata{APIVersion: output.APIVersion},
			}

			raw, _ := cmd.Flags().GetString("output")
			format, err := output.ParseFormat(raw)
			if err != nil {
				result.Data = nil
				return emit(output.NewTextWriter(), s.out, result, start,
					apperrors.NewAppError(apperrors.ErrInputInvalid, err.Error(), err))
			}
			return emit(output.NewWriter(format), s.out, result, start, nil)
		},
	}
}
