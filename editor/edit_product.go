package editor

import "github.com/glennmatthews/cot/resources"

// EditProduct applies req to the VirtualSystem's ProductSection, creating
// the section if none exists yet.
func (e *Editor) EditProduct(req resources.EditProductRequest) {
	resources.EditProduct(e.vs.ProductSection(), req)
}
