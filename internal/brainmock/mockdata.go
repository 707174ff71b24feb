// Package brainmock serves the analyzer API with generated data so the rest
// of the system can be developed and load-tested without GPU inference.
package brainmock

import (
	"math/rand"
	"sync"

	"github.com/rasadhq/rasad/pkg/brain"
)

var sentimentLabels = []string{"positive", "negative", "neutral"}

var emotionLabels = []string{"joy", "sadness", "anger", "fear", "surprise", "disgust"}

var keywordPool = []string{
	"اقتصاد", "سیاست", "ورزش", "فرهنگ", "تکنولوژی",
	"جامعه", "محیط زیست", "آموزش", "سلامت", "هنر",
	"انتخابات", "تورم", "فوتبال", "سینما", "موسیقی",
}

var entityPool = []struct {
	Text string
	Type string
}{
	{"تهران", "LOC"},
	{"ایران", "LOC"},
	{"اصفهان", "LOC"},
	{"وزارت بهداشت", "ORG"},
	{"بانک مرکزی", "ORG"},
	{"دانشگاه تهران", "ORG"},
	{"محمد", "PER"},
	{"علی", "PER"},
	{"زهرا", "PER"},
}

var topicPool = []string{
	"اقتصاد و بازار", "سیاست داخلی", "ورزش و فوتبال",
	"فرهنگ و هنر", "فناوری و نوآوری", "محیط زیست",
	"آموزش و دانشگاه", "سلامت عمومی", "روابط بین‌الملل", "جامعه و شهر",
}

var trendNamePool = []string{
	"#انتخابات", "#گرانی", "#فوتبال", "#هوای_پاک", "#بورس",
	"#سینما", "#کنکور", "#یارانه", "#اینترنت", "#قطعی_برق",
}

// generator produces repeatable mock payloads. All randomness flows through
// one guarded source so a seeded server yields a stable sequence.
type generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newGenerator(seed int64) *generator {
	return &generator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *generator) float(min, max float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rnd.Float64()*(max-min)
}

func (g *generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

func (g *generator) pick(pool []string) string {
	return pool[g.intn(len(pool))]
}

func (g *generator) sample(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	g.mu.Lock()
	perm := g.rnd.Perm(len(pool))
	g.mu.Unlock()

	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, pool[idx])
	}
	return out
}

// sentiment draws a label and a score inside that label's range.
func (g *generator) sentiment() *brain.Sentiment {
	label := g.pick(sentimentLabels)
	var score float64
	switch label {
	case "positive":
		score = g.float(0.3, 1.0)
	case "negative":
		score = g.float(-1.0, -0.3)
	default:
		score = g.float(-0.3, 0.3)
	}
	return &brain.Sentiment{
		Label:      label,
		Score:      score,
		Confidence: g.float(0.7, 0.99),
	}
}

// emotions draws a distribution over the six labels summing to 1.
func (g *generator) emotions() (map[string]float64, string) {
	weights := make([]float64, len(emotionLabels))
	var total float64
	for i := range weights {
		weights[i] = g.float(0.01, 1.0)
		total += weights[i]
	}

	scores := make(map[string]float64, len(emotionLabels))
	dominant := emotionLabels[0]
	best := 0.0
	for i, label := range emotionLabels {
		score := weights[i] / total
		scores[label] = score
		if score > best {
			best = score
			dominant = label
		}
	}
	return scores, dominant
}

func (g *generator) keywords(max int) []string {
	if max <= 0 {
		max = 10
	}
	n := 3 + g.intn(5)
	if n > max {
		n = max
	}
	return g.sample(keywordPool, n)
}

func (g *generator) entities() []brain.EntityResult {
	n := 1 + g.intn(3)
	g.mu.Lock()
	perm := g.rnd.Perm(len(entityPool))
	g.mu.Unlock()

	out := make([]brain.EntityResult, 0, n)
	offset := 0
	for _, idx := range perm[:n] {
		entity := entityPool[idx]
		out = append(out, brain.EntityResult{
			Text:       entity.Text,
			Type:       entity.Type,
			Start:      offset,
			End:        offset + len([]rune(entity.Text)),
			Confidence: g.float(0.8, 0.99),
		})
		offset += len([]rune(entity.Text)) + 1
	}
	return out
}

func (g *generator) topics(n int) []brain.TopicResult {
	if n <= 0 {
		n = 10
	}
	if n > len(topicPool) {
		n = len(topicPool)
	}
	names := g.sample(topicPool, n)
	out := make([]brain.TopicResult, 0, n)
	for _, name := range names {
		out = append(out, brain.TopicResult{
			Topic:    name,
			Score:    g.float(0.1, 1.0),
			Keywords: g.sample(keywordPool, 3),
		})
	}
	return out
}

func (g *generator) summary(text string, maxLength int) string {
	runes := []rune(text)
	if maxLength <= 0 {
		maxLength = 150
	}
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}

// textResult assembles the per-text payload for the requested types.
func (g *generator) textResult(textID, text string, types []string) brain.TextResult {
	result := brain.TextResult{TextID: textID}
	for _, typ := range types {
		switch typ {
		case "sentiment":
			result.Sentiment = g.sentiment()
		case "emotion":
			result.Emotions, result.DominantEmotion = g.emotions()
		case "keywords":
			result.Keywords = g.keywords(10)
		case "entities":
			result.Entities = g.entities()
		case "topics":
			result.Topics = g.topics(3)
		case "summary":
			result.Summary = g.summary(text, 150)
		}
	}
	return result
}

func (g *generator) trends(volume, minSize int) []brain.TrendResult {
	n := 3 + g.intn(5)
	names := g.sample(trendNamePool, n)
	out := make([]brain.TrendResult, 0, n)
	for _, name := range names {
		size := minSize + g.intn(volume+1)
		out = append(out, brain.TrendResult{
			Name:       name,
			Volume:     size,
			GrowthRate: g.float(-0.5, 3.0),
			Velocity:   g.float(0.0, 10.0),
			Sentiment:  g.sentiment(),
			Keywords:   g.sample(keywordPool, 3),
		})
	}
	return out
}

func (g *generator) pagerank(nodes []brain.GraphNodeRef) []brain.NodeRank {
	out := make([]brain.NodeRank, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, brain.NodeRank{
			ID:       node.ID,
			Type:     node.Type,
			Pagerank: g.float(0.001, 0.1),
		})
	}
	return out
}

func (g *generator) communities(nodes []brain.GraphNodeRef) *brain.CommunityResult {
	count := len(nodes)/3 + 1
	if count > 10 {
		count = 10
	}

	communities := make([]brain.Community, 0, count)
	for i := 0; i < count; i++ {
		communities = append(communities, brain.Community{
			CommunityID: i,
			Size:        0,
			Density:     g.float(0.1, 0.9),
			Keywords:    g.sample(keywordPool, 3),
		})
	}

	assignments := make([]brain.NodeCommunity, 0, len(nodes))
	for _, node := range nodes {
		id := g.intn(count)
		communities[id].Size++
		assignments = append(assignments, brain.NodeCommunity{ID: node.ID, CommunityID: id})
	}

	return &brain.CommunityResult{
		Communities: communities,
		Nodes:       assignments,
		Modularity:  g.float(0.2, 0.8),
	}
}

func (g *generator) centrality(nodes []brain.GraphNodeRef, edges []brain.GraphEdgeRef) []brain.NodeRank {
	inDegree := make(map[string]int, len(nodes))
	outDegree := make(map[string]int, len(nodes))
	for _, edge := range edges {
		outDegree[edge.Source]++
		inDegree[edge.Target]++
	}

	out := make([]brain.NodeRank, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, brain.NodeRank{
			ID:        node.ID,
			Type:      node.Type,
			Pagerank:  g.float(0.001, 0.1),
			Degree:    inDegree[node.ID] + outDegree[node.ID],
			InDegree:  inDegree[node.ID],
			OutDegree: outDegree[node.ID],
		})
	}
	return out
}
