package synthesizer

import (
	"fmt"
	"strings"

	"github.com/forsyde/f2cc-sub001/config"
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// WrapCoalesced implements spec §4.4 Step 4: for a CoalescedMap with more
// than one function, synthesize a func_wrapper that declares an
// intermediate variable of each stage's output type, calls each function in
// order with the right calling convention, and returns or writes the final
// value — then insert the wrapper at the head of the leaf's function list so
// it becomes the leaf's external entry point.
func WrapCoalesced(leaf *ir.Leaf) error {
	if leaf.Kind != ir.CoalescedMap || len(leaf.Functions) <= 1 {
		return nil
	}
	stages := leaf.Functions
	name := "func_wrapper_" + leaf.ID()

	first, last := stages[0], stages[len(stages)-1]
	inType := firstInputType(first)
	outType := last.OutputType()
	if inType == nil || outType == nil {
		return errs.New(errs.InvalidModel, "coalesced leaf %q: cannot determine wrapper I/O types", leaf.ID())
	}

	var b strings.Builder
	voidReturning := last.IsVoidReturning()
	if voidReturning {
		fmt.Fprintf(&b, "void %s(%s in, %s* out) {\n", name, cType(inType), cType(outType))
	} else {
		fmt.Fprintf(&b, "%s %s(%s in) {\n", cType(outType), name, cType(inType))
	}

	prevVar := "in"
	for i, stage := range stages {
		isLast := i == len(stages)-1
		if !isLast {
			nextVar := fmt.Sprintf("tmp%d", i+1)
			if stage.IsVoidReturning() {
				fmt.Fprintf(&b, "    %s %s;\n    %s(%s, &%s);\n", cType(stage.OutputType()), nextVar, stage.Name, prevVar, nextVar)
			} else {
				fmt.Fprintf(&b, "    %s %s = %s(%s);\n", cType(stage.OutputType()), nextVar, stage.Name, prevVar)
			}
			prevVar = nextVar
			continue
		}
		if stage.IsVoidReturning() {
			fmt.Fprintf(&b, "    %s(%s, out);\n", stage.Name, prevVar)
		} else {
			fmt.Fprintf(&b, "    return %s(%s);\n", stage.Name, prevVar)
		}
	}
	b.WriteString("}\n")

	wrapper := &ir.FunctionRecord{
		Name:       name,
		ReturnType: outType,
		Body:       b.String(),
		Params: []ir.Parameter{
			{Name: "in", Type: inType},
		},
	}
	if voidReturning {
		wrapper.ReturnType = &ir.DataType{Kind: ir.KindVoid}
		wrapper.Params = append(wrapper.Params, ir.Parameter{Name: "out", Type: outType, IsOutput: true})
	}
	leaf.Functions = append([]*ir.FunctionRecord{wrapper}, stages...)
	return nil
}

// WrapParallelScalar implements spec §4.4 Step 5's scalar target: a
// parallel_wrapper that loops i in [0,N) and calls the inner function with
// the calling convention its arity/array-ness implies.
func WrapParallelScalar(net *ir.ProcessNetwork, leaf *ir.Leaf) error {
	if leaf.Kind != ir.ParallelMap {
		return nil
	}
	fn := leaf.Function()
	if fn == nil {
		return errs.New(errs.InvalidModel, "parallel map %q has no function", leaf.ID())
	}
	name := "parallel_wrapper_" + leaf.ID()
	inType := leaf.In[0].Type
	outType := leaf.Out[0].Type
	m := stride(fn.Params, false)
	k := 1
	if fn.IsVoidReturning() {
		if op := lastOutputParam(fn); op != nil {
			k = stride([]ir.Parameter{*op}, true)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "void %s(const %s in, %s out) {\n", name, cType(elemPtrType(inType)), cType(elemPtrType(outType)))
	fmt.Fprintf(&b, "    for (int i = 0; i < %d; i++) {\n", leaf.Replication)
	if fn.IsVoidReturning() {
		fmt.Fprintf(&b, "        %s(&in[i*%d], &out[i*%d]);\n", fn.Name, m, k)
	} else {
		fmt.Fprintf(&b, "        out[i] = %s(&in[i*%d]);\n", fn.Name, m)
	}
	b.WriteString("    }\n}\n")

	wrapper := &ir.FunctionRecord{
		Name:       name,
		ReturnType: &ir.DataType{Kind: ir.KindVoid},
		Body:       b.String(),
		Params: []ir.Parameter{
			{Name: "in", Type: inType},
			{Name: "out", Type: outType, IsOutput: true},
		},
	}
	leaf.Functions = append([]*ir.FunctionRecord{wrapper}, leaf.Functions...)
	return nil
}

// WrapParallelCUDA implements spec §4.4 Step 5's CUDA target: a
// __global__ kernel indexed by blockIdx/blockDim/threadIdx plus a host
// kernel_wrapper driving device allocation, copy-in, launch(es), copy-out,
// and free.
func WrapParallelCUDA(net *ir.ProcessNetwork, leaf *ir.Leaf, cfg *config.Config, dev DeviceProperties) error {
	if leaf.Kind != ir.ParallelMap {
		return nil
	}
	fn := leaf.Function()
	if fn == nil {
		return errs.New(errs.InvalidModel, "parallel map %q has no function", leaf.ID())
	}
	n := leaf.Replication
	inType := leaf.In[0].Type
	outType := leaf.Out[0].Type
	m := stride(fn.Params, false)
	k := m
	if ot := fn.OutputType(); ot != nil && ot.IsArray && ot.SizeKnown() {
		k = *ot.ArraySize
	} else if !fn.IsVoidReturning() {
		k = 1
	}

	kernelName := "kernel_" + leaf.ID()
	wrapperName := "kernel_wrapper_" + leaf.ID()

	kc := CalculateBestKernelConfig(n, dev, sharedMemPerThread(cfg, m), cfg != nil && cfg.WatchdogTimeout)

	var b strings.Builder
	fmt.Fprintf(&b, "__global__ void %s(const %s in, %s out, int offset, int n) {\n", kernelName, cType(elemPtrType(inType)), cType(elemPtrType(outType)))
	b.WriteString("    int global_index = blockIdx.x * blockDim.x + threadIdx.x + offset;\n")
	b.WriteString("    if (global_index < n) {\n")
	if cfg != nil && cfg.UseSharedMemory {
		fmt.Fprintf(&b, "        __shared__ %s staged[%d];\n", cType(&ir.DataType{Kind: inType.Kind}), m)
		fmt.Fprintf(&b, "        for (int j = 0; j < %d; j++) staged[j] = in[global_index*%d+j];\n", m, m)
		if fn.IsVoidReturning() {
			fmt.Fprintf(&b, "        %s(staged, &out[global_index*%d]);\n", fn.Name, k)
		} else {
			fmt.Fprintf(&b, "        out[global_index] = %s(staged);\n", fn.Name)
		}
	} else if fn.IsVoidReturning() {
		fmt.Fprintf(&b, "        %s(&in[global_index*%d], &out[global_index*%d]);\n", fn.Name, m, k)
	} else {
		fmt.Fprintf(&b, "        out[global_index] = %s(&in[global_index*%d]);\n", fn.Name, m)
	}
	b.WriteString("    }\n}\n")

	kernelFn := &ir.FunctionRecord{
		Name:       kernelName,
		ReturnType: &ir.DataType{Kind: ir.KindVoid},
		Body:       b.String(),
		Params: []ir.Parameter{
			{Name: "in", Type: inType},
			{Name: "out", Type: outType, IsOutput: true},
		},
	}

	var wb strings.Builder
	fmt.Fprintf(&wb, "void %s(const %s in, %s out) {\n", wrapperName, cType(elemPtrType(inType)), cType(elemPtrType(outType)))
	fmt.Fprintf(&wb, "    %s *d_in, *d_out;\n", cType(&ir.DataType{Kind: inType.Kind}))
	fmt.Fprintf(&wb, "    cudaMalloc((void**)&d_in, %d * sizeof(%s));\n", n*m, cType(&ir.DataType{Kind: inType.Kind}))
	fmt.Fprintf(&wb, "    cudaMalloc((void**)&d_out, %d * sizeof(%s));\n", n*k, cType(&ir.DataType{Kind: outType.Kind}))
	fmt.Fprintf(&wb, "    cudaMemcpy(d_in, in, %d * sizeof(%s), cudaMemcpyHostToDevice);\n", n*m, cType(&ir.DataType{Kind: inType.Kind}))
	for launch := 0; launch < kc.NumLaunches; launch++ {
		offset := launch * kc.ElementsPerLaunch
		count := kc.ElementsPerLaunch
		if offset+count > n {
			count = n - offset
		}
		grid := (count + kc.BlockSize - 1) / kc.BlockSize
		fmt.Fprintf(&wb, "    %s<<<%d, %d>>>(d_in, d_out, %d, %d);\n", kernelName, grid, kc.BlockSize, offset, n)
	}
	fmt.Fprintf(&wb, "    cudaMemcpy(out, d_out, %d * sizeof(%s), cudaMemcpyDeviceToHost);\n", n*k, cType(&ir.DataType{Kind: outType.Kind}))
	wb.WriteString("    cudaFree(d_in);\n    cudaFree(d_out);\n}\n")

	hostWrapper := &ir.FunctionRecord{
		Name:       wrapperName,
		ReturnType: &ir.DataType{Kind: ir.KindVoid},
		Body:       wb.String(),
		Params: []ir.Parameter{
			{Name: "in", Type: inType},
			{Name: "out", Type: outType, IsOutput: true},
		},
	}

	leaf.Functions = append([]*ir.FunctionRecord{hostWrapper, kernelFn}, leaf.Functions...)
	return nil
}

func sharedMemPerThread(cfg *config.Config, elemsPerThread int) int {
	if cfg == nil || !cfg.UseSharedMemory {
		return 0
	}
	return elemsPerThread * 4
}

func firstInputType(fn *ir.FunctionRecord) *ir.DataType {
	for _, p := range fn.Params {
		if !p.IsOutput {
			return p.Type
		}
	}
	return nil
}

func lastOutputParam(fn *ir.FunctionRecord) *ir.Parameter {
	if n := len(fn.Params); n > 0 && fn.Params[n-1].IsOutput {
		return &fn.Params[n-1]
	}
	return nil
}

// stride is the number of scalar elements one replica's input (or output,
// when fromOutput) consumes: the array size of the first input (or output)
// parameter when that parameter is a sized array, otherwise 1.
func stride(params []ir.Parameter, fromOutput bool) int {
	for _, p := range params {
		if p.IsOutput != fromOutput {
			continue
		}
		if p.Type != nil && p.Type.IsArray && p.Type.SizeKnown() {
			return *p.Type.ArraySize
		}
		return 1
	}
	return 1
}

func elemPtrType(dt *ir.DataType) *ir.DataType {
	cp := dt.Clone()
	cp.IsPointer = true
	cp.IsArray = false
	return cp
}
