package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"viracoach/internal/dto"
	"viracoach/internal/service"
	"viracoach/internal/storage"
	"viracoach/internal/types"
)

func newAnalyzeCommand() *cobra.Command {
	var openaiKey string
	var geminiKey string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze <url-or-file>",
		Short: "Run the full virality analysis on one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage.InitDB()
			if _, err := storage.MarkStaleTasks(); err != nil {
				return err
			}

			src := args[0]
			if _, err := os.Stat(src); err == nil {
				src = service.LocalPrefix + src
			}

			svc, err := service.NewService(service.KeyOverrides{
				OpenaiKey: openaiKey,
				GeminiKey: geminiKey,
			})
			if err != nil {
				return err
			}

			taskId := uuid.NewString()
			events, unsubscribe := service.Subscribe(taskId)
			defer unsubscribe()

			// ctrl-c cancels at the next stage boundary
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				<-sigCh
				fmt.Fprintln(os.Stderr, "canceling...")
				_ = svc.CancelTask(taskId)
			}()

			errCh := make(chan error, 1)
			go func() {
				errCh <- svc.ProcessAnalysisTask(cmd.Context(), dto.StartAnalysisReq{
					Url:       src,
					OpenaiKey: openaiKey,
					GeminiKey: geminiKey,
				}, taskId)
			}()

			for {
				select {
				case event := <-events:
					if !jsonOut {
						fmt.Printf("[%3d%%] %s\n", event.Progress, event.State)
					}
				case err := <-errCh:
					if err != nil {
						return err
					}
					status, err := svc.GetTaskStatus(taskId)
					if err != nil {
						return err
					}
					if status.Status == uint8(types.AnalysisTaskStatusCanceled) {
						fmt.Println("analysis canceled")
						return nil
					}
					report, err := svc.GetReport(taskId)
					if err != nil {
						return err
					}
					return printReport(report, jsonOut)
				}
			}
		},
	}

	cmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key override")
	cmd.Flags().StringVar(&geminiKey, "gemini-key", "", "Gemini API key override")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw report JSON")
	return cmd
}

func newReportCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "report <task-id>",
		Short: "Show the report of a finished analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage.InitDB()

			svc, err := service.NewService(service.KeyOverrides{})
			if err != nil {
				return err
			}
			report, err := svc.GetReport(args[0])
			if err != nil {
				return err
			}
			return printReport(report, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw report JSON")
	return cmd
}

func printReport(report *types.FinalReport, jsonOut bool) error {
	if jsonOut {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	rows := [][]string{
		{"Hook", strconv.Itoa(report.Scores.Hook)},
		{"Visuals", strconv.Itoa(report.Scores.Visuals)},
		{"Audio", strconv.Itoa(report.Scores.Audio)},
		{"Engagement", strconv.Itoa(report.Scores.Engagement)},
		{"Visual diversity", strconv.Itoa(report.Scores.VisualDiversity)},
		{"Total", strconv.Itoa(report.TotalScore)},
	}
	fmt.Println(renderTable([]string{"Score", report.VideoName}, rows))

	fmt.Println(renderTable([]string{"Attribute", "Value"}, [][]string{
		{"Tone", report.Matrices.Tone},
		{"Emotion", report.Matrices.Emotion},
		{"Pace", report.Matrices.Pace},
		{"Facial sync", report.Matrices.FacialSync},
	}))

	if report.Summary != "" {
		fmt.Println("\n" + report.Summary)
	}
	if len(report.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range report.Suggestions {
			fmt.Println("  - " + strings.TrimSpace(s))
		}
	}
	return nil
}
