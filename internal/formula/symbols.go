package formula

import (
	"regexp"
	"strings"
)

// minutesSeconds matches time notation written with doubled apostrophes,
// as in 3'20''.
var minutesSeconds = regexp.MustCompile(`(\d+)'(\d+)''`)

// symbols rewrites Unicode math characters as TeX commands. Commands carry
// a trailing space so they never fuse with the letter that follows.
var symbols = strings.NewReplacer(
	// superscripts
	"⁰", "^{0}", "¹", "^{1}", "²", "^{2}", "³", "^{3}", "⁴", "^{4}",
	"⁵", "^{5}", "⁶", "^{6}", "⁷", "^{7}", "⁸", "^{8}", "⁹", "^{9}",
	"⁺", "^{+}", "⁻", "^{-}", "ⁿ", "^{n}",
	// subscripts
	"₀", "_{0}", "₁", "_{1}", "₂", "_{2}", "₃", "_{3}", "₄", "_{4}",
	"₅", "_{5}", "₆", "_{6}", "₇", "_{7}", "₈", "_{8}", "₉", "_{9}",
	"₊", "_{+}", "₋", "_{-}",
	// fractions
	"½", `\frac{1}{2}`, "⅓", `\frac{1}{3}`, "⅔", `\frac{2}{3}`,
	"¼", `\frac{1}{4}`, "¾", `\frac{3}{4}`, "⅕", `\frac{1}{5}`,
	"⅙", `\frac{1}{6}`, "⅛", `\frac{1}{8}`,
	// greek, lower case
	"α", `\alpha `, "β", `\beta `, "γ", `\gamma `, "δ", `\delta `,
	"ε", `\epsilon `, "ζ", `\zeta `, "η", `\eta `, "θ", `\theta `,
	"ι", `\iota `, "κ", `\kappa `, "λ", `\lambda `, "μ", `\mu `,
	"ν", `\nu `, "ξ", `\xi `, "π", `\pi `, "ρ", `\rho `,
	"σ", `\sigma `, "ς", `\varsigma `, "τ", `\tau `, "υ", `\upsilon `,
	"φ", `\phi `, "χ", `\chi `, "ψ", `\psi `, "ω", `\omega `,
	// greek, upper case; letters shaped like Latin ones map to them
	"Α", "A", "Β", "B", "Γ", `\Gamma `, "Δ", `\Delta `, "Ε", "E",
	"Ζ", "Z", "Η", "H", "Θ", `\Theta `, "Ι", "I", "Κ", "K",
	"Λ", `\Lambda `, "Μ", "M", "Ν", "N", "Ξ", `\Xi `, "Ο", "O",
	"Π", `\Pi `, "Ρ", "P", "Σ", `\Sigma `, "Τ", "T", "Υ", `\Upsilon `,
	"Φ", `\Phi `, "Χ", "X", "Ψ", `\Psi `, "Ω", `\Omega `,
	// sets and logic
	"∈", `\in `, "∉", `\notin `, "∋", `\ni `, "⊂", `\subset `,
	"⊃", `\supset `, "⊆", `\subseteq `, "⊇", `\supseteq `, "∪", `\cup `,
	"∩", `\cap `, "∅", `\emptyset `, "∀", `\forall `, "∃", `\exists `,
	"¬", `\neg `, "∧", `\wedge `, "∨", `\vee `, "ℝ", `\mathbb{R}`,
	"ℕ", `\mathbb{N}`, "ℤ", `\mathbb{Z}`, "ℚ", `\mathbb{Q}`,
	// arrows
	"→", `\rightarrow `, "←", `\leftarrow `, "↔", `\leftrightarrow `,
	"⇒", `\Rightarrow `, "⇐", `\Leftarrow `, "⇔", `\Leftrightarrow `,
	"↑", `\uparrow `, "↓", `\downarrow `, "↦", `\mapsto `,
	// operators and relations
	"×", `\times `, "÷", `\div `, "±", `\pm `, "∓", `\mp `,
	"·", `\cdot `, "⋅", `\cdot `, "∗", `\ast `, "≠", `\neq `,
	"≈", `\approx `, "≤", `\leq `, "≥", `\geq `, "≡", `\equiv `,
	"≅", `\cong `, "∼", `\sim `, "∝", `\propto `, "≪", `\ll `,
	"≫", `\gg `, "∞", `\infty `, "∑", `\sum `, "∏", `\prod `,
	"∫", `\int `, "∮", `\oint `, "√", `\sqrt `, "∂", `\partial `,
	"∇", `\nabla `, "∠", `\angle `, "⊥", `\perp `, "∥", `\parallel `,
	"°", `^{\circ}`, "′", "'", "″", "''", "…", `\ldots `, "−", "-",
)

// Normalize rewrites Unicode math symbols in source as TeX commands.
func Normalize(source string) string {
	source = minutesSeconds.ReplaceAllString(source, `${1}'${2}"`)
	return strings.TrimSpace(symbols.Replace(source))
}
