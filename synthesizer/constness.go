package synthesizer

// ApplyConstness implements spec §4.4 Step 9: every model-level input array
// signal has its type marked const, since the corresponding parameter is
// passed by pointer (spec §4.4 Step 11) and the generated function body
// never writes through it.
func ApplyConstness(set *Set) {
	for _, sig := range set.ordered {
		if sig.OutPort == nil && sig.Type != nil && sig.Type.IsArray {
			sig.Type.IsConst = true
		}
	}
}
