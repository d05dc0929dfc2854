package extract

// scopeStack tracks the enclosing class and function while one file's tree
// is traversed. Pushes and pops are strictly paired per nested construct;
// the stack is owned by a single traversal and never shared across files.
type scopeStack struct {
	classes   []string
	functions []string
}

func (s *scopeStack) pushClass(name string) {
	s.classes = append(s.classes, name)
}

func (s *scopeStack) popClass() {
	s.classes = s.classes[:len(s.classes)-1]
}

func (s *scopeStack) pushFunction(name string) {
	s.functions = append(s.functions, name)
}

func (s *scopeStack) popFunction() {
	s.functions = s.functions[:len(s.functions)-1]
}

// currentClass returns the innermost enclosing class, or "" at module or
// function-local scope.
func (s *scopeStack) currentClass() string {
	if len(s.classes) == 0 {
		return ""
	}
	return s.classes[len(s.classes)-1]
}

// currentFunction returns the innermost enclosing function, or "".
func (s *scopeStack) currentFunction() string {
	if len(s.functions) == 0 {
		return ""
	}
	return s.functions[len(s.functions)-1]
}
