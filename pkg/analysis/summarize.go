package analysis

import (
	"sort"

	"github.com/rasadhq/rasad/pkg/common"
)

// maxSummaryKeywords caps the keyword list in a job summary.
const maxSummaryKeywords = 20

// Summarize aggregates a job's per-post results. It is pure: the same result
// set always yields the same summary, so re-running a completed job rewrites
// an identical document.
func Summarize(results []common.AnalysisResult, totalPosts int) *common.AnalysisSummary {
	summary := &common.AnalysisSummary{
		TotalPosts:            totalPosts,
		ProcessedPosts:        len(results),
		SentimentDistribution: make(map[string]int),
		EmotionDistribution:   make(map[string]int),
		TopKeywords:           []common.KeywordCount{},
	}

	var sentimentSum float64
	var sentimentCount int
	keywordCounts := make(map[string]int)
	keywordOrder := make(map[string]int)

	for _, result := range results {
		if result.SentimentLabel != "" {
			summary.SentimentDistribution[result.SentimentLabel]++
		}
		if result.SentimentScore != nil {
			sentimentSum += *result.SentimentScore
			sentimentCount++
		}
		if result.DominantEmotion != "" {
			summary.EmotionDistribution[result.DominantEmotion]++
		}
		for _, keyword := range result.Keywords {
			if _, seen := keywordCounts[keyword]; !seen {
				keywordOrder[keyword] = len(keywordOrder)
			}
			keywordCounts[keyword]++
		}
	}

	if sentimentCount > 0 {
		avg := sentimentSum / float64(sentimentCount)
		summary.AverageSentiment = &avg
	}

	keywords := make([]common.KeywordCount, 0, len(keywordCounts))
	for keyword, count := range keywordCounts {
		keywords = append(keywords, common.KeywordCount{Keyword: keyword, Count: count})
	}
	// Ties keep the order keywords were first encountered in.
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywordOrder[keywords[i].Keyword] < keywordOrder[keywords[j].Keyword]
	})
	if len(keywords) > maxSummaryKeywords {
		keywords = keywords[:maxSummaryKeywords]
	}
	summary.TopKeywords = keywords

	return summary
}
