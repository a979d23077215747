/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/movie-stats/internal/aggregate"
	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/filter"
)

type SendEmailConfig struct {
	From   string
	To     string
	APIKey string
	DryRun bool
	// Number of movies listed in the body. The attachment has all of them.
	Number int
}

var emailFilters filterFlags

var emailCmd = &cobra.Command{
	Use:   "email <address> [start] [end (optional)]",
	Short: "Emails the rating statistics",
	Long: `Emails the per-movie summary and the genre by year table, with
Movie_Statistical_Summary.csv and Data.csv attached.`,
	Args: cobra.RangeArgs(1, 3),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := SendEmailConfig{
			From:   viper.GetString("from"),
			To:     args[0],
			APIKey: viper.GetString("sendgrid_api_key"),
			DryRun: viper.GetBool("dryRun"),
			Number: viper.GetInt("email_number"),
		}

		ds, err := loadFromViper(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		err = sendEmail(os.Stdout, ds, emailFilters, args[1:], config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)
	addFilterFlags(emailCmd, &emailFilters)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var number int
	emailCmd.Flags().IntVar(&number, "number", 20, "Number of movies listed in the email body")
	viper.BindPFlag("email_number", emailCmd.Flags().Lookup("number"))

	var apiKey string
	emailCmd.Flags().StringVar(&apiKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))
}

type attachment struct {
	name    string
	content []byte
}

func sendEmail(out io.Writer, ds *dataset.Dataset, ff filterFlags, args []string, config SendEmailConfig) error {
	spec, report, err := runReportFromArgs(ds, ff, args, analysis.Options{})
	if err != nil {
		return err
	}

	subject, body := generateEmailContent(spec, report, config.Number)
	attachments, err := emailAttachments(ds, report)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Fprintf(out, "Would have sent email: \nsubject: %s\n%s\n", subject, body)
		for _, a := range attachments {
			fmt.Fprintf(out, "attachment: %s (%d bytes)\n", a.name, len(a.content))
		}
		return nil
	}

	if config.APIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}
	message := buildMessage(config, subject, body, attachments)
	client := sendgrid.NewSendClient(config.APIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}
	fmt.Fprintf(out, "Sent %q to %s\n", subject, config.To)
	return nil
}

func generateEmailContent(spec filter.Spec, report *analysis.Report, number int) (subject string, body string) {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	out += "<div>\n<h2>Summary of movies statistical data</h2>\n"
	if len(report.Movies) == 0 {
		out += "<div>No ratings found.</div>\n"
	} else {
		out += summaryAnalysis(report, number).HTML()
	}
	out += "</div>\n<div>\n<h2>Average rating by genre and year</h2>\n"
	if report.GenreTable.Len() == 0 {
		out += "<div>No ratings found.</div>\n"
	} else {
		out += genreAnalysis(report).HTML()
	}
	out += "</div>\n  </body>\n</html>\n"

	subject = fmt.Sprintf("Movie ratings report for %s", describeSpec(spec))
	return subject, out
}

func emailAttachments(ds *dataset.Dataset, report *analysis.Report) ([]attachment, error) {
	var summary, data bytes.Buffer
	if err := aggregate.WriteSummaryCSV(&summary, report.Movies); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}
	if err := dataset.WriteCSV(&data, ds); err != nil {
		return nil, fmt.Errorf("writing data: %w", err)
	}
	return []attachment{
		{summaryFileName, summary.Bytes()},
		{dataFileName, data.Bytes()},
	}, nil
}

func buildMessage(config SendEmailConfig, subject, body string, attachments []attachment) *mail.SGMailV3 {
	from := mail.NewEmail("movie-stats", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, body)
	for _, a := range attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.content))
		att.SetType("text/csv")
		att.SetFilename(a.name)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}
	return message
}
