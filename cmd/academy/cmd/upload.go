package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/service"
)

var uploadFlags struct {
	course, lesson string
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a lesson video",
	Long: `Upload a video file to a course you teach. With --lesson the video is
attached to that lesson once the host has received it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := service.OpenVideoFile(args[0])
		if err != nil {
			return err
		}

		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		out := cmd.OutOrStdout()
		up := c.NewUploader(uploadFlags.course, uploadFlags.lesson, uploadReporting(out, file)...)

		if err := up.Select(file); err != nil {
			return err
		}
		res, err := up.Start(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Video %s (%s)\n", res.VideoID, core.FormatFileSize(file.Size))
		if minutes, ok := up.DurationMinutes(); ok {
			fmt.Fprintf(out, "Duration %s\n", core.FormatDuration(minutes*60))
		}
		return nil
	},
}

// uploadReporting prints transfer progress on a single line of out
func uploadReporting(out io.Writer, file *service.VideoFile) []service.UploadOption {
	return []service.UploadOption{
		service.WithProgress(func(percent float64) {
			fmt.Fprintf(out, "\rUploading %s: %3.0f%%", file.Name, percent)
		}),
		service.WithStatus(func(status core.UploadStatus) {
			logger.Debug("upload status", "status", status)
			if status == core.UploadProcessing || status == core.UploadError {
				fmt.Fprintln(out)
			}
		}),
	}
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFlags.course, "course", "", "Course id")
	uploadCmd.Flags().StringVar(&uploadFlags.lesson, "lesson", "", "Lesson id to attach the video to")
	_ = uploadCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(uploadCmd)
}
