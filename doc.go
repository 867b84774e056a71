// Package islands renders interactive components ("islands") inside
// server-rendered HTML pages and brings them back to life against the same
// component registry.
//
// A page is ordinary server-rendered HTML. Each island is a container
// element carrying the island's component id and its initial props:
//
//	<div data-component="Counter" data-props='{"start":3}'>...server markup...</div>
//
// The hydrator scans the page for these markers, resolves each id in the
// registry and mounts the component, reusing the server markup when it is
// present and rendering fresh when the marker is client-only:
//
//	<div data-component="Cart" data-props='{}' data-client-only="true"></div>
//
// # Core Concepts
//
// A Registry maps component ids to an Entry: the client module that
// implements the island and a Loader for its server Definition. Registries
// are built once and are immutable:
//
//	reg := islands.NewRegistry(
//	    islands.Register("Counter", "src/islands/Counter.ts", islands.Static(Counter)),
//	)
//
// Definitions are usually typed with New, which decodes Props into a struct
// before rendering:
//
//	var Counter = islands.New(func(ctx context.Context, p CounterProps) templ.Component {
//	    return counterView(p)
//	})
//
// Props are JSON objects. NewProps rejects values that do not survive a
// JSON round trip, and encoding is deterministic.
//
// # Rendering
//
// A Renderer renders a batch of islands for one page. Islands render
// concurrently; if any island fails the whole batch fails. Each rendered
// island records the code modules it touched, and the batch turns the union
// into preload tags using the build manifest:
//
//	r := islands.NewRenderer(reg, islands.WithManifest(m), islands.WithDevMode(dev))
//	b, err := r.Render(ctx, []islands.Request{
//	    {ID: "Counter", Props: islands.Props{"start": 3}},
//	    {ID: "Cart", Mode: islands.ModeClientOnly},
//	})
//	page = islands.InjectPreload(page, b.PreloadTags)
//
// Islands without an explicit mode render client-only in development and
// on the server otherwise.
//
// # Fragments
//
// Handler serves single islands over HTTP so that pages can load them later,
// for example with HTMX. Props travel in the URL, signed or encrypted:
//
//	http.Handle(islands.DefaultFragmentPrefix, r.Handler(islands.DefaultFragmentPrefix))
//	u, err := r.FragmentURL(islands.DefaultFragmentPrefix, "Cart", props, true)
//
// # Code Generation
//
// Run 'islands generate' to build a package's registry entries from
// //islands:component directives on loader functions.
//
// # Hydration
//
// Package lib/hydrate hydrates a parsed document (lib/dom) against a
// Registry. Every island is independent: an unknown id is skipped, a
// failing island is reported, and neither affects the others.
package islands
