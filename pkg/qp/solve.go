package qp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
)

// Problem is a quadratic program in the form described in the package
// documentation.
type Problem struct {
	D    *mat.SymDense // n×n symmetric positive definite
	Dvec []float64     // linear term, length n
	A    *mat.Dense    // n×m constraint matrix, nil when m == 0
	B    []float64     // constraint bounds, length m
	Meq  int           // leading columns of A that are equalities
}

// Result holds the solution of a quadratic program.
type Result struct {
	Solution   []float64 // minimizer
	Value      float64   // objective at the minimizer
	Lagrangian []float64 // multiplier per constraint, zero when inactive
	Active     []int     // constraints in the final active set
	Iterations int       // outer iterations performed
}

// Solve minimizes p and returns the solution.
func Solve(p Problem) (Result, error) {
	n, m, err := p.dims()
	if err != nil {
		return Result{}, err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(p.D); !ok {
		return Result{}, perrors.New(perrors.ErrCodeQPNotPositiveDefinite,
			"matrix D in quadratic function is not positive definite")
	}

	s := newSolver(n, m, p)
	if err := s.init(&chol, p.D, p.Dvec); err != nil {
		return Result{}, err
	}
	if err := s.run(); err != nil {
		return Result{}, err
	}
	return s.result(p), nil
}

func (p Problem) dims() (n, m int, err error) {
	if p.D == nil {
		return 0, 0, perrors.New(perrors.ErrCodeInvalidInput, "quadratic term D is nil")
	}
	n = p.D.SymmetricDim()
	if n == 0 {
		return 0, 0, perrors.New(perrors.ErrCodeInvalidInput, "problem has no variables")
	}
	if len(p.Dvec) != n {
		return 0, 0, perrors.New(perrors.ErrCodeInvalidInput,
			"D is %d×%d but d has length %d", n, n, len(p.Dvec))
	}
	m = len(p.B)
	if p.A == nil {
		if m != 0 {
			return 0, 0, perrors.New(perrors.ErrCodeInvalidInput, "b has %d entries but A is nil", m)
		}
	} else {
		r, c := p.A.Dims()
		if r != n || c != m {
			return 0, 0, perrors.New(perrors.ErrCodeInvalidInput,
				"A is %d×%d, want %d×%d", r, c, n, m)
		}
	}
	if p.Meq < 0 || p.Meq > m {
		return 0, 0, perrors.New(perrors.ErrCodeInvalidInput,
			"meq %d out of range [0,%d]", p.Meq, m)
	}
	return n, m, nil
}

// solver carries the working state of one Goldfarb–Idnani run.
//
// J holds L⁻ᵀ rotated into the basis of the active set, R the upper
// triangular factor of the active constraints in that basis. Column k of
// R and entry k of u belong to constraint act[k].
type solver struct {
	n, m, meq int

	cols [][]float64 // constraint normals, one per column of A
	bnd  []float64

	x []float64
	J [][]float64
	R [][]float64
	u []float64

	act   []int
	iq    int
	rNorm float64

	d, z, r, s []float64

	inactive []bool // inequality i may be chosen
	allowed  []bool // inequality i not excluded after a degenerate add

	c1, c2 float64
	iter   int
	limit  int
}

func newSolver(n, m int, p Problem) *solver {
	s := &solver{
		n: n, m: m, meq: p.Meq,
		cols:     make([][]float64, m),
		bnd:      p.B,
		x:        make([]float64, n),
		J:        square(n),
		R:        square(n),
		u:        make([]float64, n+1),
		act:      make([]int, n+1),
		rNorm:    1,
		d:        make([]float64, n),
		z:        make([]float64, n),
		r:        make([]float64, n+1),
		s:        make([]float64, m),
		inactive: make([]bool, m),
		allowed:  make([]bool, m),
		limit:    50 * (n + m + 1),
	}
	for j := range m {
		s.cols[j] = mat.Col(nil, j, p.A)
	}
	return s
}

func square(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	return out
}

// init computes J = L⁻ᵀ and the unconstrained minimum.
func (s *solver) init(chol *mat.Cholesky, D mat.Symmetric, dvec []float64) error {
	var u, inv mat.TriDense
	chol.UTo(&u)
	if err := inv.InverseTri(&u); err != nil {
		return perrors.Wrap(perrors.ErrCodeQPNotPositiveDefinite, err, "invert Cholesky factor")
	}
	for i := range s.n {
		for j := range s.n {
			s.J[i][j] = inv.At(i, j)
		}
		s.c2 += s.J[i][i]
	}
	s.c1 = mat.Trace(D)

	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(s.n, append([]float64(nil), dvec...))); err != nil {
		return perrors.Wrap(perrors.ErrCodeQPNotPositiveDefinite, err, "unconstrained minimum")
	}
	for i := range s.n {
		s.x[i] = -x.AtVec(i)
	}
	return nil
}

func (s *solver) run() error {
	if err := s.addEqualities(); err != nil {
		return err
	}

outer:
	for {
		s.iter++
		if s.iter > s.limit {
			return perrors.New(perrors.ErrCodeQPInfeasible,
				"no convergence after %d iterations", s.limit)
		}

		for i := s.meq; i < s.m; i++ {
			s.inactive[i] = true
		}
		for k := s.meq; k < s.iq; k++ {
			s.inactive[s.act[k]] = false
		}

		psi := 0.0
		for i := s.meq; i < s.m; i++ {
			s.allowed[i] = true
			s.s[i] = s.slack(i)
			psi += min(0, s.s[i])
		}
		if math.Abs(psi) <= float64(s.m)*eps*s.c1*s.c2*100 {
			return nil
		}

		uOld := append([]float64(nil), s.u[:s.iq]...)
		actOld := append([]int(nil), s.act[:s.iq]...)
		xOld := append([]float64(nil), s.x...)

		ip, ok := s.mostViolated()
		if !ok {
			return nil
		}
		s.u[s.iq] = 0
		s.act[s.iq] = ip

		for {
			s.iter++
			if s.iter > s.limit {
				return perrors.New(perrors.ErrCodeQPInfeasible,
					"no convergence after %d iterations", s.limit)
			}
			np := s.cols[ip]
			s.computeD(np)
			s.updateZ()
			s.updateR()

			// Partial step length: largest dual step keeping multipliers >= 0.
			t1, drop := math.Inf(1), -1
			for k := s.meq; k < s.iq; k++ {
				if s.r[k] > 0 {
					if v := s.u[k] / s.r[k]; v < t1 {
						t1, drop = v, s.act[k]
					}
				}
			}
			// Full step length: primal step making constraint ip active.
			t2 := math.Inf(1)
			if math.Abs(floats.Dot(s.z, s.z)) > eps {
				t2 = -s.s[ip] / floats.Dot(s.z, np)
			}
			t := min(t1, t2)

			if math.IsInf(t, 1) {
				return perrors.New(perrors.ErrCodeQPInfeasible,
					"constraints are inconsistent, no solution (constraint %d)", ip)
			}

			if math.IsInf(t2, 1) {
				// Step in dual space only.
				floats.AddScaled(s.u[:s.iq], -t, s.r[:s.iq])
				s.u[s.iq] += t
				s.inactive[drop] = true
				s.deleteConstraint(drop)
				continue
			}

			floats.AddScaled(s.x, t, s.z)
			floats.AddScaled(s.u[:s.iq], -t, s.r[:s.iq])
			s.u[s.iq] += t

			if math.Abs(t-t2) < eps {
				// Full step: constraint ip joins the active set.
				if s.addConstraint() {
					s.inactive[ip] = false
					continue outer
				}
				s.allowed[ip] = false
				s.deleteConstraint(ip)
				for i := s.meq; i < s.m; i++ {
					s.inactive[i] = true
				}
				for k := range s.iq {
					s.act[k] = actOld[k]
					s.u[k] = uOld[k]
					if s.act[k] >= s.meq {
						s.inactive[s.act[k]] = false
					}
				}
				copy(s.x, xOld)

				if ip, ok = s.mostViolated(); !ok {
					return nil
				}
				s.u[s.iq] = 0
				s.act[s.iq] = ip
				continue
			}

			// Partial step: drop the blocking constraint and retry ip.
			s.inactive[drop] = true
			s.deleteConstraint(drop)
			s.s[ip] = s.slack(ip)
		}
	}
}

func (s *solver) addEqualities() error {
	for i := range s.meq {
		if s.iq == s.n {
			return perrors.New(perrors.ErrCodeQPInfeasible,
				"more equality constraints than variables (constraint %d)", i)
		}
		np := s.cols[i]
		s.computeD(np)
		s.updateZ()
		s.updateR()

		t2 := 0.0
		if zn := floats.Dot(s.z, np); math.Abs(floats.Dot(s.z, s.z)) > eps {
			t2 = -s.slack(i) / zn
		}
		floats.AddScaled(s.x, t2, s.z)
		s.u[s.iq] = t2
		floats.AddScaled(s.u[:s.iq], -t2, s.r[:s.iq])
		s.act[s.iq] = i
		if !s.addConstraint() {
			return perrors.New(perrors.ErrCodeQPInfeasible,
				"equality constraints are linearly dependent (constraint %d)", i)
		}
	}
	return nil
}

// slack returns aᵢᵀx - bᵢ, negative when constraint i is violated.
func (s *solver) slack(i int) float64 {
	return floats.Dot(s.cols[i], s.x) - s.bnd[i]
}

func (s *solver) mostViolated() (int, bool) {
	ip, ss := -1, 0.0
	for i := s.meq; i < s.m; i++ {
		if s.s[i] < ss && s.inactive[i] && s.allowed[i] {
			ip, ss = i, s.s[i]
		}
	}
	return ip, ip >= 0
}

// computeD sets d = Jᵀ·np.
func (s *solver) computeD(np []float64) {
	for i := range s.n {
		sum := 0.0
		for j := range s.n {
			sum += s.J[j][i] * np[j]
		}
		s.d[i] = sum
	}
}

// updateZ sets z to the primal step direction J₂·d₂.
func (s *solver) updateZ() {
	for i := range s.n {
		sum := 0.0
		for j := s.iq; j < s.n; j++ {
			sum += s.J[i][j] * s.d[j]
		}
		s.z[i] = sum
	}
}

// updateR sets r = R⁻¹·d₁, the dual step direction.
func (s *solver) updateR() {
	for i := s.iq - 1; i >= 0; i-- {
		sum := 0.0
		for j := i + 1; j < s.iq; j++ {
			sum += s.R[i][j] * s.r[j]
		}
		s.r[i] = (s.d[i] - sum) / s.R[i][i]
	}
}

// addConstraint rotates d so that only its first iq+1 entries are
// non-zero, appends it as a new column of R and reports whether the new
// constraint is independent of the active set.
func (s *solver) addConstraint() bool {
	for j := s.n - 1; j >= s.iq+1; j-- {
		cc, ss := s.d[j-1], s.d[j]
		h := math.Hypot(cc, ss)
		if h == 0 {
			continue
		}
		s.d[j] = 0
		cc, ss = cc/h, ss/h
		if cc < 0 {
			cc, ss = -cc, -ss
			s.d[j-1] = -h
		} else {
			s.d[j-1] = h
		}
		xny := ss / (1 + cc)
		for k := range s.n {
			t1, t2 := s.J[k][j-1], s.J[k][j]
			s.J[k][j-1] = t1*cc + t2*ss
			s.J[k][j] = xny*(t1+s.J[k][j-1]) - t2
		}
	}
	s.iq++
	for i := range s.iq {
		s.R[i][s.iq-1] = s.d[i]
	}
	if math.Abs(s.d[s.iq-1]) <= eps*s.rNorm {
		return false
	}
	s.rNorm = max(s.rNorm, math.Abs(s.d[s.iq-1]))
	return true
}

// deleteConstraint removes constraint l from the active set and restores
// the triangular shape of R with Givens rotations.
func (s *solver) deleteConstraint(l int) {
	qq := -1
	for k := s.meq; k < s.iq; k++ {
		if s.act[k] == l {
			qq = k
			break
		}
	}
	if qq < 0 {
		return
	}

	for k := qq; k < s.iq-1; k++ {
		s.act[k] = s.act[k+1]
		s.u[k] = s.u[k+1]
		for j := range s.n {
			s.R[j][k] = s.R[j][k+1]
		}
	}
	s.act[s.iq-1] = s.act[s.iq]
	s.u[s.iq-1] = s.u[s.iq]
	s.act[s.iq] = 0
	s.u[s.iq] = 0
	for j := range s.iq {
		s.R[j][s.iq-1] = 0
	}
	s.iq--
	if s.iq == 0 {
		return
	}

	for j := qq; j < s.iq; j++ {
		cc, ss := s.R[j][j], s.R[j+1][j]
		h := math.Hypot(cc, ss)
		if h == 0 {
			continue
		}
		cc, ss = cc/h, ss/h
		s.R[j+1][j] = 0
		if cc < 0 {
			s.R[j][j] = -h
			cc, ss = -cc, -ss
		} else {
			s.R[j][j] = h
		}
		xny := ss / (1 + cc)
		for k := j + 1; k < s.iq; k++ {
			t1, t2 := s.R[j][k], s.R[j+1][k]
			s.R[j][k] = t1*cc + t2*ss
			s.R[j+1][k] = xny*(t1+s.R[j][k]) - t2
		}
		for k := range s.n {
			t1, t2 := s.J[k][j], s.J[k][j+1]
			s.J[k][j] = t1*cc + t2*ss
			s.J[k][j+1] = xny*(s.J[k][j]+t1) - t2
		}
	}
}

func (s *solver) result(p Problem) Result {
	res := Result{
		Solution:   s.x,
		Lagrangian: make([]float64, s.m),
		Active:     make([]int, s.iq),
		Iterations: s.iter,
	}
	for k := range s.iq {
		res.Lagrangian[s.act[k]] = s.u[k]
		res.Active[k] = s.act[k]
	}

	var dx mat.VecDense
	xv := mat.NewVecDense(s.n, s.x)
	dx.MulVec(p.D, xv)
	res.Value = 0.5*mat.Dot(xv, &dx) + floats.Dot(p.Dvec, s.x)
	return res
}

// eps is the machine epsilon used for the degeneracy tests.
var eps = math.Nextafter(1, 2) - 1
