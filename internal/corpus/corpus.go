// Package corpus ships the static reference documents checked on every
// detection request. The set is fixed at build time, read-only, and safe to
// share across concurrent requests without synchronization.
package corpus

import "github.com/raysh454/utsushi/internal/model"

var sources = []model.ReferenceSource{
	{
		ID:    "corpus-001",
		Title: "Climate Pressure on Global Health Systems",
		URL:   "https://example.org/library/climate-pressure-health-systems",
		Content: "Climate change is no longer a distant environmental concern but an active driver of public health emergencies. " +
			"Prolonged heat waves reduce agricultural yields, undermine food security, and increase vector-borne diseases. " +
			"Hospitals in affected regions report admission spikes during extreme weather events, while supply chains for essential medicines grow more fragile each season. " +
			"Health ministries that treat climate adaptation as core infrastructure rather than emergency response consistently achieve better outcomes for vulnerable populations.",
	},
	{
		ID:    "corpus-002",
		Title: "The Economics of Grid-Scale Battery Storage",
		URL:   "https://example.org/library/grid-scale-battery-storage",
		Content: "Falling cell prices have moved grid-scale battery storage from pilot projects into mainstream utility planning. " +
			"Storage smooths the daily mismatch between solar generation peaks and evening demand, deferring expensive transmission upgrades. " +
			"Regulators now ask whether capacity markets reward batteries fairly compared with gas peaker plants, and early auction results suggest the answer varies sharply by jurisdiction. " +
			"Lifetime degradation remains the hardest cost to model, because cycling behaviour depends on market signals that did not exist when warranties were written.",
	},
	{
		ID:    "corpus-003",
		Title: "Attention Is Not Understanding: Limits of Language Models",
		URL:   "https://example.org/library/limits-of-language-models",
		Content: "Large language models predict plausible continuations without maintaining any commitment to truth. " +
			"Benchmark gains frequently reflect memorized templates rather than transferable reasoning, and performance collapses when surface forms are perturbed. " +
			"Evaluations that separate retrieval from inference show the sharpest gap on multi-step arithmetic and novel causal chains. " +
			"Treating fluency as competence therefore remains the central category error in applied machine learning deployments.",
	},
	{
		ID:    "corpus-004",
		Title: "Microplastic Accumulation in Freshwater Ecosystems",
		URL:   "https://example.org/library/microplastics-freshwater",
		Content: "Rivers carry the overwhelming majority of plastic mass that eventually reaches the ocean, yet lakes retain particles far longer than marine systems. " +
			"Sediment cores from alpine lakes record a measurable polymer layer beginning in the nineteen sixties. " +
			"Filter-feeding invertebrates concentrate fibres at rates that scale with urban runoff, passing them upward through fish populations to human consumers. " +
			"Wastewater treatment captures most particles by count but misses the fragment sizes most likely to cross biological membranes.",
	},
	{
		ID:    "corpus-005",
		Title: "Why Cities Underinvest in Cycling Infrastructure",
		URL:   "https://example.org/library/cycling-infrastructure-economics",
		Content: "Protected bicycle lanes return several times their construction cost in reduced congestion and health spending, yet most municipal budgets treat them as discretionary amenities. " +
			"The asymmetry comes from accounting: road maintenance is a standing obligation while cycling projects compete as new capital requests. " +
			"Cities that reclassified active transport as core network maintenance saw completion rates triple within a decade. " +
			"Opposition usually peaks before construction and reverses within two years of opening, a pattern documented across four continents.",
	},
	{
		ID:    "corpus-006",
		Title: "Academic Integrity in the Age of Generated Text",
		URL:   "https://example.org/library/academic-integrity-generated-text",
		Content: "Universities responded to generated text first with detection software and then with assessment redesign, and the second strategy has aged far better. " +
			"Oral defences, staged drafts, and process portfolios make authorship visible in ways no classifier can. " +
			"Honour codes still matter: institutions that involve students in writing their integrity policies report markedly fewer violations. " +
			"Punitive approaches without pedagogical support simply push misconduct toward harder-to-observe channels.",
	},
}

// Sources returns the static reference set. The backing array is shared and
// must not be modified; callers receive a fresh slice header so appends
// cannot clobber the corpus.
func Sources() []model.ReferenceSource {
	out := make([]model.ReferenceSource, len(sources))
	copy(out, sources)
	return out
}

// Len reports the number of shipped documents.
func Len() int { return len(sources) }
