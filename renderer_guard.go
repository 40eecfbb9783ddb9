package arena

import (
	"fmt"
)

// RendererTag records which renderer owns the window. Only one may be installed.
type RendererTag struct {
	Name string
}

// ClaimRenderer registers name as the app's renderer. Claiming again with the same
// name is a no-op; a different name panics.
func ClaimRenderer(app *App, name string) {
	if app == nil {
		panic("ClaimRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}
