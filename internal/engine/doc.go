// Package engine binds caller-owned tensor buffers to an opaque inference
// runtime and runs it synchronously.
//
// Key components:
//   - ModelInstance: the runtime capability (descriptors, shapes, RunSync)
//   - Descriptor: input/output counts and declared shapes, either as the
//     runtime reports them or as fixed by a ShapePolicy
//   - Validator: arity, element-count and optional exact-shape checks
//   - Session: the SetInputs -> RunSync state machine
//   - Registry: runtimes by name, with a process-wide default registry
//
// Example usage:
//
//	h, err := engine.LoadByName(ctx, "NNERuntimeORTCpu", "yolov8n.onnx", engine.Options{
//	    Shapes: engine.ShapePolicy{
//	        Source: engine.ShapeSourceFixed,
//	        Inputs: []tensor.Shape{{1, 3, 640, 640}},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	if err := h.Session.SetInputs([]*tensor.Buffer{input}); err != nil {
//	    return err
//	}
//	if err := h.Session.RunSync([]*tensor.Buffer{output}); err != nil {
//	    return err
//	}
//
// Sessions hold no locks. Buffers are borrowed, never copied: they must stay
// alive and untouched by other goroutines while bound.
package engine
