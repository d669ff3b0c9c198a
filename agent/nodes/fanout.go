package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/founding-ai/orchestra/agent/contract"
)

// SiteGenerator materializes a generated file tree into a locally served
// static site. Implementations are best-effort; a nil generator disables the
// step.
type SiteGenerator interface {
	Generate(techArtifact map[string]any, projectName string) (string, error)
}

type fanoutJob struct {
	agent        contract.AgentID
	memoryKey    string
	resultKey    string
	artifactID   string
	title        string
	doneAction   string
	needsImages  bool
	sanitized    bool
	pendingEvent string
}

var fanoutJobs = []fanoutJob{
	{contract.AgentDesign, "DesignAgent", "design", "design", "Brand Identity", "Brand Identity Created", false, true, "Designing Brand Identity"},
	{contract.AgentMarketing, "MarketingAgent", "marketing", "marketing", "Go-To-Market Plan", "Launch Plan Ready", false, true, "Planning Launch"},
	{contract.AgentTech, "TechAgent", "tech", "tech", "Technical Architecture", "Tech Stack Defined", false, true, "Generating Tech Stack"},
	{contract.AgentRenovation, "RenovationAgent", "renovation_plan", "renovation", "Renovation & Visual Upgrade", "Visual Upgrade Planned", true, false, ""},
}

// FanOut runs the mutually independent downstream agents concurrently and
// joins with an all-succeed barrier: if any agent fails, nothing is merged
// and the failure aborts the run. Renovation joins whenever input images are
// present, independent of router selection.
func FanOut(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
	sites SiteGenerator,
) (*RunState, error) {
	type selected struct {
		job   fanoutJob
		agent contract.Capability
	}

	var batch []selected
	for _, job := range fanoutJobs {
		if job.needsImages {
			if !st.Memory.HasImages() {
				continue
			}
		} else if !st.Intent.Has(job.agent) {
			continue
		}
		agent, ok := roster.Get(job.agent)
		if !ok {
			continue
		}
		batch = append(batch, selected{job: job, agent: agent})
	}
	if len(batch) == 0 {
		return st, nil
	}

	for _, s := range batch {
		if s.job.pendingEvent != "" {
			sink.Publish(contract.Timeline(s.agent.DisplayName(), s.job.pendingEvent, contract.TimelinePending))
		}
	}

	// Concurrent calls read a private snapshot each; memory writes happen
	// only after the join, on this goroutine.
	results := make([]map[string]any, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range batch {
		snap := st.Memory.Snapshot()
		if s.job.sanitized {
			snap = st.Memory.Sanitized()
		}
		g.Go(func() error {
			out, err := s.agent.Run(gctx, snap)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fan-out failed: %w", err)
	}

	for i, s := range batch {
		artifact := results[i][s.job.resultKey]
		if artifact == nil {
			artifact = results[i]
		}
		st.Memory.SaveArtifact(s.job.memoryKey, s.job.resultKey, artifact)
		sink.Publish(contract.Artifact(s.job.artifactID, s.job.title, artifactJSON(artifact), 1))
		sink.Publish(contract.Timeline(s.agent.DisplayName(), s.job.doneAction, contract.TimelineAccepted))

		if s.job.agent == contract.AgentTech {
			st.PreviewURL = materializeSite(st, sink, artifact, sites)
		}
	}

	if st.PreviewURL != "" {
		blueprint := map[string]any{
			"message":   "Task Complete",
			"artifacts": st.Memory.Artifacts(),
		}
		st.Memory.SetStatus(contract.StatusCompleted)
		sink.Publish(contract.Event{Type: contract.EventCompletion, Data: contract.Completion{
			Blueprint:  blueprint,
			PreviewURL: st.PreviewURL,
		}})
		st.Blueprint = blueprint
		st.Done = true
	}

	return st, nil
}

// materializeSite is explicitly best-effort: any failure is logged and
// swallowed, never fatal to the run.
func materializeSite(st *RunState, sink contract.Sink, artifact any, sites SiteGenerator) string {
	if sites == nil {
		return ""
	}
	tech, ok := artifact.(map[string]any)
	if !ok {
		return ""
	}

	projectName := "Founding AI Project"
	snap := st.Memory.Snapshot()
	if name, ok := snap.BusinessProfile["name"].(string); ok && name != "" {
		projectName = name
	}

	previewURL, err := sites.Generate(tech, projectName)
	if err != nil {
		log.Warn().Err(err).Msg("site generation failed")
		return ""
	}
	if previewURL == "" {
		return ""
	}

	tech["preview_url"] = previewURL
	st.Memory.SaveArtifact("TechAgent", "tech", tech)
	sink.Publish(contract.Artifact("tech", "Technical Architecture", artifactJSON(tech), 2))
	sink.Publish(contract.Timeline("System", "Website Live at "+previewURL, contract.TimelineAccepted))
	return previewURL
}
