package noise

import "math"

// Field — детерминированный источник 2D градиентного шума.
// Вся таблица перестановок выводится из сида при создании, после
// конструктора состояние не меняется, поэтому чтение безопасно из
// нескольких горутин. Два Field с одинаковым сидом дают побитово
// одинаковые значения — на этом держится детерминизм генерации.
type Field struct {
	perm [512]int
}

// grad2 — градиентные направления для 2D шума
var grad2 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// NewField создаёт поле шума с таблицей перестановок, выведенной из сида
func NewField(seed int64) *Field {
	f := &Field{}

	// Начинаем с тождественной перестановки
	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Перемешивание Фишера-Йетса, случайность — линейный конгруэнтный генератор
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		if j < 0 {
			j = -j
		}
		p[i], p[j] = p[j], p[i]
	}

	// Дублируем таблицу, чтобы не брать индексы по модулю при выборке
	for i := 0; i < 512; i++ {
		f.perm[i] = p[i&255]
	}
	return f
}

// Sample2D возвращает градиентный шум в точке (x, z), диапазон [-1, 1].
// Значение непрерывно: малые сдвиги координат дают малые изменения.
func (f *Field) Sample2D(x, z float64) float64 {
	const (
		skew   = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		unskew = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	// Перекос координат для определения симплекс-ячейки
	s := (x + z) * skew
	i := fastFloor(x + s)
	j := fastFloor(z + s)

	t := float64(i+j) * unskew
	x0 := x - (float64(i) - t)
	z0 := z - (float64(j) - t)

	// Верхний или нижний треугольник ячейки
	var i1, j1 int
	if x0 > z0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + unskew
	z1 := z0 - float64(j1) + unskew
	x2 := x0 - 1.0 + 2.0*unskew
	z2 := z0 - 1.0 + 2.0*unskew

	ii := i & 255
	jj := j & 255
	gi0 := f.perm[ii+f.perm[jj]] % 12
	gi1 := f.perm[ii+i1+f.perm[jj+j1]] % 12
	gi2 := f.perm[ii+1+f.perm[jj+1]] % 12

	var n0, n1, n2 float64

	t0 := 0.5 - x0*x0 - z0*z0
	if t0 >= 0 {
		t0 *= t0
		n0 = t0 * t0 * dot2(grad2[gi0], x0, z0)
	}

	t1 := 0.5 - x1*x1 - z1*z1
	if t1 >= 0 {
		t1 *= t1
		n1 = t1 * t1 * dot2(grad2[gi1], x1, z1)
	}

	t2 := 0.5 - x2*x2 - z2*z2
	if t2 >= 0 {
		t2 *= t2
		n2 = t2 * t2 * dot2(grad2[gi2], x2, z2)
	}

	return 70.0 * (n0 + n1 + n2)
}

// Fractal суммирует октавы Sample2D с геометрически растущей частотой
// (lacunarity) и убывающей амплитудой (persistence). Сумма нормируется
// на суммарную амплитуду, поэтому результат остаётся в [-1, 1] при
// любом числе октав. octaves < 1 трактуется как 1.
func (f *Field) Fractal(x, z float64, octaves int, lacunarity, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}

	var total, maxAmp float64
	frequency := 1.0
	amplitude := 1.0

	for i := 0; i < octaves; i++ {
		total += f.Sample2D(x*frequency, z*frequency) * amplitude
		maxAmp += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	return total / maxAmp
}

// Ridged — фрактальный шум с острыми гребнями, диапазон [0, 1].
// Каждая октава вносит (1 - |Sample2D|)^2: нули исходного шума
// превращаются в хребты. octaves < 1 трактуется как 1.
func (f *Field) Ridged(x, z float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}

	var total, maxAmp float64
	frequency := 1.0
	amplitude := 1.0

	for i := 0; i < octaves; i++ {
		r := 1.0 - math.Abs(f.Sample2D(x*frequency, z*frequency))
		total += r * r * amplitude
		maxAmp += amplitude
		amplitude *= 0.5
		frequency *= 2.0
	}
	return total / maxAmp
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}

func dot2(g [2]float64, x, z float64) float64 {
	return g[0]*x + g[1]*z
}
