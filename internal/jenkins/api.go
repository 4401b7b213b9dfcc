package jenkins

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// Job is an entry of the server's job list.
type Job struct {
	Name  string
	Color string
	URL   string
}

// Status returns a readable status derived from the ball color.
func (j Job) Status() string {
	switch color := j.Color; {
	case color == "blue" || color == "green":
		return "success"
	case color == "red":
		return "failed"
	case color == "yellow":
		return "unstable"
	case color == "aborted":
		return "aborted"
	case color == "disabled":
		return "disabled"
	case color == "notbuilt":
		return "not built"
	case strings.HasSuffix(color, "_anime"):
		return "building"
	}
	return j.Color
}

// Build describes a single run of a job.
// Durations are in milliseconds as reported by Jenkins.
type Build struct {
	Job               string
	Number            int
	DisplayName       string
	Result            *string // nil while building
	Building          bool
	Duration          int64
	EstimatedDuration int64
	Timestamp         time.Time
	URL               string
	Description       *string
}

// Elapsed returns how long the build has been running at now.
// For finished builds it is the recorded duration.
func (b Build) Elapsed(now time.Time) time.Duration {
	if !b.Building {
		return time.Duration(b.Duration) * time.Millisecond
	}
	if b.Timestamp.IsZero() {
		return 0
	}
	return now.Sub(b.Timestamp)
}

// Jobs lists the jobs at the top level of the server.
func (c *Client) Jobs(ctx context.Context) ([]Job, error) {
	body, err := c.get(ctx, "tree="+url.QueryEscape("jobs[name,color,url]"))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode jobs: %w", ErrInvalidResponse)
	}

	var jobs []Job
	gjson.GetBytes(body, "jobs").ForEach(func(_, v gjson.Result) bool {
		jobs = append(jobs, Job{
			Name:  v.Get("name").String(),
			Color: v.Get("color").String(),
			URL:   v.Get("url").String(),
		})
		return true
	})
	return jobs, nil
}

// Build fetches build number of job. A number <= 0 fetches the last build.
// Nested jobs are addressed as "folder/job".
func (c *Client) Build(ctx context.Context, job string, number int) (Build, error) {
	path := append(jobPath(job), buildRef(number))
	body, err := c.get(ctx, "", path...)
	if err != nil {
		return Build{}, err
	}
	b, err := parseBuild(body)
	if err != nil {
		return Build{}, fmt.Errorf("decode build %s #%s: %w", job, buildRef(number), err)
	}
	b.Job = job
	return b, nil
}

// parseBuild decodes a build JSON document.
func parseBuild(body []byte) (Build, error) {
	if !gjson.ValidBytes(body) {
		return Build{}, ErrInvalidResponse
	}
	r := gjson.ParseBytes(body)
	if !r.Get("number").Exists() {
		return Build{}, ErrInvalidResponse
	}

	b := Build{
		Number:            int(r.Get("number").Int()),
		DisplayName:       r.Get("fullDisplayName").String(),
		Building:          r.Get("building").Bool(),
		Duration:          r.Get("duration").Int(),
		EstimatedDuration: r.Get("estimatedDuration").Int(),
		URL:               r.Get("url").String(),
		Result:            optionalString(r.Get("result")),
		Description:       optionalString(r.Get("description")),
	}
	if ts := r.Get("timestamp").Int(); ts > 0 {
		b.Timestamp = time.UnixMilli(ts)
	}
	return b, nil
}

// optionalString returns nil for missing or null values.
func optionalString(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	return &s
}

// LastBuilds fetches the last build of each job concurrently.
// Results are returned in the same order as jobs. The first failure cancels
// the remaining requests and is returned.
func LastBuilds(ctx context.Context, c *Client, jobs []string, parallel int) ([]Build, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	if parallel < 1 {
		parallel = 1
	}

	builds := make([]Build, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, job := range jobs {
		g.Go(func() error {
			b, err := c.Build(ctx, job, 0)
			if err != nil {
				return err
			}
			builds[i] = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return builds, nil
}
