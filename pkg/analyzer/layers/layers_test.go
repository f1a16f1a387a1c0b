package layers

import (
	"strings"
	"testing"

	"github.com/augurlabs/augur/pkg/analyzer/depgraph"
	"github.com/augurlabs/augur/pkg/facts"
)

func node(pkg, name string) depgraph.Node {
	return depgraph.Node{ID: facts.ID(pkg, name), Name: name, Package: pkg}
}

func graphOf(nodes []depgraph.Node, edges [][2]string) *depgraph.DependencyGraph {
	g := depgraph.NewDependencyGraph()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		g.AddEdge(e[0], e[1], depgraph.DependencyUsage)
	}
	return g
}

func TestInfer(t *testing.T) {
	a := New()

	tests := []struct {
		name  string
		pkg   string
		class string
		want  LayerType
	}{
		{"package keyword controller", "com.shop.controllers", "UserScreen", LayerPresentation},
		{"package keyword web", "com.shop.web.rest", "Mapper", LayerPresentation},
		{"package keyword service plural", "billing.services", "Invoicer", LayerApplication},
		{"package keyword domain", "com.shop.domain.model", "User", LayerDomain},
		{"package keyword repository", "org.acme.repositories", "Thing", LayerData},
		{"package keyword persistence", "app.persistence", "Mapper", LayerData},
		{"package keyword infra", "net.pay.infra.kafka", "Producer", LayerInfrastructure},
		{"package keyword config", "app.config", "Wiring", LayerInfrastructure},
		{"package case-insensitive", "COM.SHOP.WEB", "Mapper", LayerPresentation},
		{"rule order wins over segment order", "domain.service", "Booker", LayerApplication},
		{"package rule beats class suffix", "com.shop.domain", "UserController", LayerDomain},
		{"suffix controller", "com.shop.misc", "UserController", LayerPresentation},
		{"suffix service without package", "", "PaymentService", LayerApplication},
		{"suffix repository", "com.shop.misc", "OrderRepository", LayerData},
		{"suffix client", "com.shop.misc", "KafkaClient", LayerInfrastructure},
		{"bare suffix name", "", "Controller", LayerPresentation},
		{"no rule matches", "com.shop.misc", "Helper", LayerUnknown},
		{"empty fact", "", "", LayerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Infer(tt.pkg, tt.class); got != tt.want {
				t.Fatalf("Infer(%q, %q) = %v, want %v", tt.pkg, tt.class, got, tt.want)
			}
		})
	}
}

func TestInferLayer_ResolverAdapter(t *testing.T) {
	a := New()

	layer, ok := a.InferLayer("com.shop.domain", "User")
	if !ok || layer != "domain" {
		t.Fatalf("InferLayer(domain pkg) = (%q, %v), want (domain, true)", layer, ok)
	}
	layer, ok = a.InferLayer("com.shop.misc", "Helper")
	if ok || layer != "" {
		t.Fatalf("InferLayer(unmatched) = (%q, %v), want (\"\", false)", layer, ok)
	}
}

func TestIsValidLayerDependency(t *testing.T) {
	valid := [][2]LayerType{
		{LayerPresentation, LayerApplication},
		{LayerPresentation, LayerDomain},
		{LayerApplication, LayerDomain},
		{LayerApplication, LayerData},
		{LayerData, LayerDomain},
		{LayerInfrastructure, LayerDomain},
		{LayerDomain, LayerDomain},
		{LayerPresentation, LayerPresentation},
		{LayerUnknown, LayerDomain},
		{LayerDomain, LayerUnknown},
	}
	for _, pair := range valid {
		if !IsValidLayerDependency(pair[0], pair[1]) {
			t.Errorf("IsValidLayerDependency(%v, %v) = false, want true", pair[0], pair[1])
		}
	}

	invalid := [][2]LayerType{
		{LayerDomain, LayerApplication},
		{LayerDomain, LayerPresentation},
		{LayerDomain, LayerData},
		{LayerDomain, LayerInfrastructure},
		{LayerApplication, LayerPresentation},
		{LayerApplication, LayerInfrastructure},
		{LayerData, LayerApplication},
		{LayerData, LayerPresentation},
		{LayerData, LayerInfrastructure},
		{LayerInfrastructure, LayerApplication},
		{LayerInfrastructure, LayerPresentation},
		{LayerInfrastructure, LayerData},
		{LayerPresentation, LayerData},
		{LayerPresentation, LayerInfrastructure},
	}
	for _, pair := range invalid {
		if IsValidLayerDependency(pair[0], pair[1]) {
			t.Errorf("IsValidLayerDependency(%v, %v) = true, want false", pair[0], pair[1])
		}
	}
}

// The canonical asymmetry: the application layer may reach down into the
// domain, but the domain must never know about the application.
func TestIsValidLayerDependency_Asymmetry(t *testing.T) {
	if !IsValidLayerDependency(LayerApplication, LayerDomain) {
		t.Fatal("application -> domain should be valid")
	}
	if IsValidLayerDependency(LayerDomain, LayerApplication) {
		t.Fatal("domain -> application should be invalid")
	}
}

func layersOf(types ...LayerType) []Layer {
	out := make([]Layer, len(types))
	for i, typ := range types {
		out[i] = Layer{Type: typ, Level: typ.Level(), ClassCount: 1}
	}
	return out
}

func dep(from, to LayerType) LayerDependency {
	return LayerDependency{From: from, To: to, Count: 1, IsValid: IsValidLayerDependency(from, to)}
}

func TestDeterminePattern(t *testing.T) {
	tests := []struct {
		name   string
		layers []Layer
		deps   []LayerDependency
		want   ArchitecturePattern
	}{
		{
			name: "no layers",
			want: PatternUnknown,
		},
		{
			name:   "single layer",
			layers: layersOf(LayerDomain),
			want:   PatternUnknown,
		},
		{
			name:   "two layers without cross dependencies",
			layers: layersOf(LayerDomain, LayerApplication),
			want:   PatternLayered,
		},
		{
			name:   "clean architecture",
			layers: layersOf(LayerDomain, LayerApplication, LayerInfrastructure),
			deps: []LayerDependency{
				dep(LayerApplication, LayerDomain),
				dep(LayerInfrastructure, LayerDomain),
			},
			want: PatternClean,
		},
		{
			name:   "hexagonal without application core",
			layers: layersOf(LayerPresentation, LayerData, LayerDomain),
			deps: []LayerDependency{
				dep(LayerPresentation, LayerDomain),
				dep(LayerData, LayerDomain),
			},
			want: PatternHexagonal,
		},
		{
			name:   "onion with presentation ring",
			layers: layersOf(LayerPresentation, LayerApplication, LayerDomain),
			deps: []LayerDependency{
				dep(LayerPresentation, LayerApplication),
				dep(LayerApplication, LayerDomain),
			},
			want: PatternOnion,
		},
		{
			name:   "layered without domain",
			layers: layersOf(LayerPresentation, LayerData),
			deps: []LayerDependency{
				dep(LayerPresentation, LayerData),
			},
			want: PatternLayered,
		},
		{
			name:   "outward edge breaks onion",
			layers: layersOf(LayerApplication, LayerDomain),
			deps: []LayerDependency{
				dep(LayerApplication, LayerDomain),
				dep(LayerDomain, LayerApplication),
			},
			want: PatternLayered,
		},
		{
			// The forbidden presentation -> infrastructure edge still
			// points inward, so the project degrades from clean to
			// onion rather than to plain layered.
			name:   "invalid inward edge downgrades clean to onion",
			layers: layersOf(LayerPresentation, LayerApplication, LayerInfrastructure, LayerDomain),
			deps: []LayerDependency{
				dep(LayerApplication, LayerDomain),
				dep(LayerInfrastructure, LayerDomain),
				dep(LayerPresentation, LayerInfrastructure),
			},
			want: PatternOnion,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeterminePattern(tt.layers, tt.deps); got != tt.want {
				t.Fatalf("DeterminePattern() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeGraph(t *testing.T) {
	controller := node("com.shop.web", "UserController")
	service := node("com.shop.service", "UserService")
	user := node("com.shop.domain", "User")
	repo := node("com.shop.repository", "UserRepository")
	util := node("com.shop.util", "Strings")

	g := graphOf(
		[]depgraph.Node{controller, service, user, repo, util},
		[][2]string{
			{controller.ID, service.ID},
			{controller.ID, repo.ID}, // presentation -> data: forbidden
			{service.ID, user.ID},
			{service.ID, repo.ID},
			{repo.ID, user.ID},
			{user.ID, service.ID}, // domain -> application: inversion
		},
	)
	cycle := [][]string{{service.ID, user.ID}}

	analysis := New().AnalyzeGraph(g, cycle)

	wantLayers := []struct {
		typ     LayerType
		classes []string
	}{
		{LayerPresentation, []string{controller.ID}},
		{LayerApplication, []string{service.ID}},
		{LayerData, []string{repo.ID}},
		{LayerDomain, []string{user.ID}},
	}
	if len(analysis.Layers) != len(wantLayers) {
		t.Fatalf("got %d layers, want %d", len(analysis.Layers), len(wantLayers))
	}
	for i, want := range wantLayers {
		got := analysis.Layers[i]
		if got.Type != want.typ || got.ClassCount != 1 || got.Classes[0] != want.classes[0] {
			t.Fatalf("layer %d = %+v, want type %v classes %v", i, got, want.typ, want.classes)
		}
		if got.Level != want.typ.Level() {
			t.Fatalf("layer %v level = %d, want %d", got.Type, got.Level, want.typ.Level())
		}
	}

	wantDeps := []struct {
		from, to LayerType
		valid    bool
	}{
		{LayerPresentation, LayerApplication, true},
		{LayerPresentation, LayerData, false},
		{LayerApplication, LayerData, true},
		{LayerApplication, LayerDomain, true},
		{LayerData, LayerDomain, true},
		{LayerDomain, LayerApplication, false},
	}
	if len(analysis.Dependencies) != len(wantDeps) {
		t.Fatalf("got %d layer dependencies, want %d: %+v", len(analysis.Dependencies), len(wantDeps), analysis.Dependencies)
	}
	for i, want := range wantDeps {
		got := analysis.Dependencies[i]
		if got.From != want.from || got.To != want.to || got.IsValid != want.valid || got.Count != 1 {
			t.Fatalf("dependency %d = %+v, want %v -> %v valid=%v", i, got, want.from, want.to, want.valid)
		}
	}

	if analysis.Pattern != PatternLayered {
		t.Fatalf("pattern = %v, want %v", analysis.Pattern, PatternLayered)
	}

	if len(analysis.Violations) != 4 {
		t.Fatalf("got %d violations, want 4: %+v", len(analysis.Violations), analysis.Violations)
	}
	v := analysis.Violations[0]
	if v.Type != ViolationLayer || v.From != controller.ID || v.To != repo.ID {
		t.Fatalf("violation 0 = %+v, want layer violation %s -> %s", v, controller.ID, repo.ID)
	}
	if !strings.Contains(v.Description, "presentation") || !strings.Contains(v.Description, "data") {
		t.Fatalf("violation 0 description %q should name both layers", v.Description)
	}
	v = analysis.Violations[1]
	if v.Type != ViolationInversion || v.From != user.ID || v.To != service.ID {
		t.Fatalf("violation 1 = %+v, want inversion %s -> %s", v, user.ID, service.ID)
	}
	for i, wantFrom := range []string{service.ID, user.ID} {
		v = analysis.Violations[2+i]
		if v.Type != ViolationCircular || v.From != wantFrom {
			t.Fatalf("violation %d = %+v, want circular for %s", 2+i, v, wantFrom)
		}
	}

	s := analysis.Summary
	if s.LayerCount != 4 || s.ClassifiedClasses != 4 || s.UnclassifiedClasses != 1 {
		t.Fatalf("summary layer counts = %+v", s)
	}
	if s.DependencyCount != 6 || s.InvalidDependencies != 2 {
		t.Fatalf("summary dependency counts = %+v", s)
	}
	if s.LayerViolations != 1 || s.Inversions != 1 || s.CircularDependencies != 2 || s.TotalViolations != 4 {
		t.Fatalf("summary violation counts = %+v", s)
	}
}

func TestAnalyzeGraph_TrustsRecordedLayer(t *testing.T) {
	// The package says presentation, the recorded layer says domain; the
	// recorded layer wins.
	a := depgraph.Node{ID: "com.shop.web.Policy", Name: "Policy", Package: "com.shop.web", Layer: "domain"}
	b := node("com.shop.service", "Runner")

	g := depgraph.NewDependencyGraph()
	g.AddNode(a)
	g.AddNode(b)
	g.AddEdge(a.ID, b.ID, depgraph.DependencyUsage)

	analysis := New().AnalyzeGraph(g, nil)

	if len(analysis.Layers) != 2 || analysis.Layers[0].Type != LayerApplication || analysis.Layers[1].Type != LayerDomain {
		t.Fatalf("layers = %+v, want application then domain", analysis.Layers)
	}
	if len(analysis.Violations) != 1 || analysis.Violations[0].Type != ViolationInversion {
		t.Fatalf("violations = %+v, want one inversion", analysis.Violations)
	}
}

func TestDetectViolations_DomainToContractIsNotInversion(t *testing.T) {
	// Both edges leave the domain illegally, but only the one landing on
	// a concrete class is an inversion.
	entity := node("com.shop.domain", "Order")
	contract := depgraph.Node{
		ID:      "com.shop.repository.OrderStore",
		Name:    "OrderStore",
		Package: "com.shop.repository",
		Kind:    facts.KindInterface,
	}
	concrete := node("com.shop.repository", "JdbcOrderStore")

	g := depgraph.NewDependencyGraph()
	g.AddNode(entity)
	g.AddNode(contract)
	g.AddNode(concrete)
	g.AddEdge(entity.ID, contract.ID, depgraph.DependencyUsage)
	g.AddEdge(entity.ID, concrete.ID, depgraph.DependencyUsage)

	violations := New().DetectViolations(g, nil)
	if len(violations) != 2 {
		t.Fatalf("violations = %+v, want two", violations)
	}
	types := map[string]ViolationType{}
	for _, v := range violations {
		types[v.To] = v.Type
	}
	if types[contract.ID] != ViolationLayer {
		t.Errorf("edge to interface = %v, want %v", types[contract.ID], ViolationLayer)
	}
	if types[concrete.ID] != ViolationInversion {
		t.Errorf("edge to concrete class = %v, want %v", types[concrete.ID], ViolationInversion)
	}
}

func TestAnalyzeGraph_Empty(t *testing.T) {
	for _, g := range []*depgraph.DependencyGraph{nil, depgraph.NewDependencyGraph()} {
		analysis := New().AnalyzeGraph(g, nil)
		if analysis.Pattern != PatternUnknown {
			t.Fatalf("pattern = %v, want %v", analysis.Pattern, PatternUnknown)
		}
		if len(analysis.Layers) != 0 || len(analysis.Dependencies) != 0 || len(analysis.Violations) != 0 {
			t.Fatalf("empty graph should produce an empty analysis, got %+v", analysis)
		}
		if analysis.Summary.TotalViolations != 0 || analysis.Summary.LayerCount != 0 {
			t.Fatalf("empty graph summary = %+v", analysis.Summary)
		}
	}
}

func TestAnalyzeGraph_SingleLayer(t *testing.T) {
	a := node("com.shop.domain", "Order")
	b := node("com.shop.domain", "OrderLine")

	g := graphOf([]depgraph.Node{a, b}, [][2]string{{a.ID, b.ID}})
	analysis := New().AnalyzeGraph(g, nil)

	if analysis.Pattern != PatternUnknown {
		t.Fatalf("pattern = %v, want %v", analysis.Pattern, PatternUnknown)
	}
	if len(analysis.Dependencies) != 0 {
		t.Fatalf("same-layer edges should not produce layer dependencies, got %+v", analysis.Dependencies)
	}
	if len(analysis.Violations) != 0 {
		t.Fatalf("violations = %+v, want none", analysis.Violations)
	}
}

func TestAnalyzeGraph_FromBuilder(t *testing.T) {
	classes := []facts.ClassFact{
		{
			Name:    "User",
			Package: "com.shop.domain",
			Kind:    facts.KindClass,
			Properties: []facts.Property{
				{Name: "id", Type: "UUID"},
				{Name: "email", Type: "String", Mutable: true},
			},
		},
		{
			Name:    "UserService",
			Package: "com.shop.service",
			Kind:    facts.KindClass,
			Imports: []string{"com.shop.domain.User"},
			Methods: []facts.Method{
				{Name: "findUser", Parameters: []string{"String"}, ReturnType: "User"},
			},
		},
	}

	a := New()
	g := depgraph.New(depgraph.WithLayerResolver(a.InferLayer)).Build(classes)

	userNode, ok := g.Node("com.shop.domain.User")
	if !ok || userNode.Layer != "domain" {
		t.Fatalf("User node = %+v, want layer domain", userNode)
	}
	serviceNode, ok := g.Node("com.shop.service.UserService")
	if !ok || serviceNode.Layer != "application" {
		t.Fatalf("UserService node = %+v, want layer application", serviceNode)
	}

	analysis := a.AnalyzeGraph(g, nil)

	if len(analysis.Layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(analysis.Layers))
	}
	if len(analysis.Dependencies) != 1 {
		t.Fatalf("got %d layer dependencies, want 1", len(analysis.Dependencies))
	}
	d := analysis.Dependencies[0]
	if d.From != LayerApplication || d.To != LayerDomain || !d.IsValid {
		t.Fatalf("dependency = %+v, want valid application -> domain", d)
	}
	// Every cross-layer dependency lands on the domain.
	if analysis.Pattern != PatternHexagonal {
		t.Fatalf("pattern = %v, want %v", analysis.Pattern, PatternHexagonal)
	}
	if len(analysis.Violations) != 0 {
		t.Fatalf("violations = %+v, want none", analysis.Violations)
	}
}

func TestLayerTypeLevel(t *testing.T) {
	if !(LayerPresentation.Level() < LayerApplication.Level() &&
		LayerApplication.Level() < LayerData.Level() &&
		LayerData.Level() == LayerInfrastructure.Level() &&
		LayerData.Level() < LayerDomain.Level()) {
		t.Fatal("layer levels must order presentation < application < data = infrastructure < domain")
	}
	if LayerUnknown.Level() != 0 {
		t.Fatalf("unknown layer level = %d, want 0", LayerUnknown.Level())
	}
}

func TestParseLayerType(t *testing.T) {
	tests := []struct {
		in     string
		want   LayerType
		wantOK bool
	}{
		{"domain", LayerDomain, true},
		{"presentation", LayerPresentation, true},
		{"application", LayerApplication, true},
		{"data", LayerData, true},
		{"infrastructure", LayerInfrastructure, true},
		{"", LayerUnknown, false},
		{"unknown", LayerUnknown, false},
		{"garbage", LayerUnknown, false},
	}
	for _, tt := range tests {
		got, ok := ParseLayerType(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLayerType(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
