package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"callmood/internal/app"
	"callmood/internal/config"
	"callmood/internal/model"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build logger")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect")
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			logger.WithError(err).Error("cleanup failed")
		}
	}()

	now := float64(time.Now().Add(-time.Hour).UnixMilli())
	for i, p := range demoCalls(now) {
		call, err := a.CallService.Register(ctx, p)
		if err != nil {
			logger.WithError(err).WithField("call_id", p.CallID).Fatal("failed to register call")
		}
		logger.WithFields(logrus.Fields{
			"call_id": call.CallID,
			"allowed": call.AnalysisAllowed,
			"reason":  call.AnalysisBlockReason,
		}).Info("seeded call")

		if i == 0 {
			if err := a.AnalysisService.Import(ctx, call.CallID, demoAnalysis()); err != nil {
				logger.WithError(err).Fatal("failed to import analysis")
			}
			logger.WithField("call_id", call.CallID).Info("seeded analysis")
		}
	}
}

func f64(v float64) *float64 { return &v }

func demoCalls(start float64) []*model.CallPayload {
	yes := true
	return []*model.CallPayload{
		{
			CallID:          "demo_call_billing",
			AgentName:       "Billing Assistant",
			UserPhoneNumber: "+15555550101",
			StartTimestamp:  f64(start),
			EndTimestamp:    f64(start + 95000),
			RecordingURL:    "https://example.com/recordings/demo_call_billing.wav",
			CallSummary:     "Customer disputed a late fee. The agent waived it and the customer thanked them.",
			TranscriptObject: []model.RawTranscriptEntry{
				{Role: "agent", Content: "Thanks for calling, how can I help?", Words: []model.RawWord{{Word: "Thanks", Start: 0.2, End: 0.5}, {Word: "help?", Start: 2.1, End: 2.6}}},
				{Role: "user", Content: "I was charged a late fee and I paid on time.", Words: []model.RawWord{{Word: "I", Start: 3.0, End: 3.1}, {Word: "time.", Start: 6.4, End: 6.9}}},
				{Role: "agent", Content: "I can see that, I have removed the fee.", Words: []model.RawWord{{Word: "I", Start: 7.5, End: 7.6}, {Word: "fee.", Start: 10.2, End: 10.6}}},
				{Role: "user", Content: "Great, thank you so much.", Words: []model.RawWord{{Word: "Great,", Start: 11.0, End: 11.4}, {Word: "much.", Start: 12.8, End: 13.2}}},
			},
		},
		{
			CallID:          "demo_call_voicemail",
			AgentName:       "Renewal Reminder",
			UserPhoneNumber: "+15555550102",
			StartTimestamp:  f64(start + 600000),
			EndTimestamp:    f64(start + 640000),
			RecordingURL:    "https://example.com/recordings/demo_call_voicemail.wav",
			InVoicemail:     &yes,
			CallSummary:     "Reached voicemail, left a reminder message.",
		},
		{
			CallID:          "demo_call_short",
			AgentName:       "Renewal Reminder",
			UserPhoneNumber: "+15555550103",
			StartTimestamp:  f64(start + 900000),
			EndTimestamp:    f64(start + 905000),
			RecordingURL:    "https://example.com/recordings/demo_call_short.wav",
		},
	}
}

func demoAnalysis() *model.AnalysisResponse {
	seg := func(start, end float64, speaker, name string, score float64, category string) model.RawSegment {
		return model.RawSegment{
			TimeStart:   start,
			TimeEnd:     end,
			Speaker:     speaker,
			TopEmotions: []model.RawEmotion{{Name: name, Score: score, Category: category}},
		}
	}
	return &model.AnalysisResponse{
		Success: true,
		Status:  "completed",
		Results: &model.AnalysisResults{
			Filename: "demo_call_billing.wav",
			Prosody: []model.RawSegment{
				seg(0.2, 2.6, "Agent", "Calmness", 0.62, "neutral"),
				seg(3.0, 6.9, "Customer", "Anger", 0.71, "negative"),
				seg(7.5, 10.6, "Agent", "Sympathy", 0.55, "positive"),
				seg(11.0, 13.2, "Customer", "Joy", 0.83, "positive"),
			},
			Burst: []model.RawSegment{
				seg(11.2, 11.6, "Customer", "Amusement", 0.4, "positive"),
			},
			Summary: "Customer frustration resolved after the fee was waived.",
		},
	}
}
