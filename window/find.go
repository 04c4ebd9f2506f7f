package window

// FindOwnedDialog returns the first live dialog box owned by owner.
func FindOwnedDialog(m Manager, owner HWND) (HWND, bool) {
	if owner == 0 {
		return 0, false
	}
	owned, err := m.Owned(owner)
	if err != nil {
		return 0, false
	}
	return firstDialog(m, owned)
}

// FindDialog returns the first live top-level dialog box on the desktop.
func FindDialog(m Manager) (HWND, bool) {
	all, err := m.TopLevel()
	if err != nil {
		return 0, false
	}
	return firstDialog(m, all)
}

func firstDialog(m Manager, handles []HWND) (HWND, bool) {
	for _, h := range handles {
		if !m.IsWindow(h) {
			continue
		}
		if class, err := m.ClassName(h); err == nil && class == DialogClass {
			return h, true
		}
	}
	return 0, false
}

// ChildrenOfClass returns the children of parent whose class is class.
func ChildrenOfClass(m Manager, parent HWND, class string) ([]HWND, error) {
	children, err := m.Children(parent)
	if err != nil {
		return nil, err
	}
	var out []HWND
	for _, c := range children {
		name, err := m.ClassName(c)
		if err != nil {
			continue
		}
		if name == class {
			out = append(out, c)
		}
	}
	return out, nil
}
