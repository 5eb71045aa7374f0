package emotion

import "callmood/internal/model"

func emo(name string, score float64, category string) model.RawEmotion {
	e := model.RawEmotion{Name: name, Score: score}
	if category != "" {
		e.Category = category
	}
	return e
}

func rawSeg(start, end any, speaker string, emotions ...model.RawEmotion) model.RawSegment {
	s := model.RawSegment{TimeStart: start, TimeEnd: end, TopEmotions: emotions}
	if speaker != "" {
		s.Speaker = speaker
	}
	return s
}

func turn(speaker string, start, end float64, text string) model.RawTranscriptEntry {
	return model.RawTranscriptEntry{Speaker: speaker, Start: start, End: end, Content: text}
}

func response(prosody []model.RawSegment, transcript ...model.RawTranscriptEntry) *model.AnalysisResponse {
	results := &model.AnalysisResults{Prosody: prosody}
	if len(transcript) > 0 {
		results.Metadata = &model.AnalysisMetadata{TranscriptSegments: transcript}
	}
	return &model.AnalysisResponse{Success: true, Results: results}
}

func segment(speaker string, start, end float64, name string, score float64, category Category) Segment {
	s := Segment{Start: start, End: end, Speaker: speaker, Category: category}
	if name != "" {
		c := Candidate{Name: name, Score: score, Percentage: score * 100, Category: category}
		s.Emotions = []Candidate{c}
		s.Dominant = &c
	}
	return s
}
