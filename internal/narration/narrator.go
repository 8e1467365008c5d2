package narration

import (
	"strings"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/logging"
	"github.com/annel0/indoor-nav/internal/pathfinding"
)

// Действия структурированных шагов, помимо тегов вертикальных переходов
const (
	StepStart   = "start"
	StepForward = "forward"
	StepTurn    = "turn"
	StepArrived = "arrived"
)

// LinkInfo сведения о связи для шага перехода между этажами
type LinkInfo struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Direction string  `json:"direction"`
	FromFloor int     `json:"from_floor"`
	ToFloor   int     `json:"to_floor"`
	Steps     int     `json:"steps,omitempty"`
	Duration  float64 `json:"duration"`
}

// Step структурированный шаг маршрута
type Step struct {
	Index       int                  `json:"step"`
	Action      string               `json:"action"`
	From        pathfinding.Position `json:"from"`
	To          pathfinding.Position `json:"to"`
	Distance    int                  `json:"distance,omitempty"`
	Heading     string               `json:"heading,omitempty"`
	Turn        string               `json:"turn,omitempty"`
	Link        *LinkInfo            `json:"link,omitempty"`
	Description string               `json:"description"`
}

// Narration результат озвучивания маршрута
type Narration struct {
	Instructions     []string `json:"instructions"`
	Steps            []Step   `json:"steps"`
	EstimatedSeconds float64  `json:"estimated_seconds"`
	Fallback         bool     `json:"fallback"`
}

// Timing нормы времени для оценки маршрута
type Timing struct {
	MoveSeconds     float64 `yaml:"move_seconds" json:"move_seconds"`
	StairSeconds    float64 `yaml:"stair_seconds" json:"stair_seconds"`
	ElevatorSeconds float64 `yaml:"elevator_seconds" json:"elevator_seconds"`
	OtherSeconds    float64 `yaml:"other_seconds" json:"other_seconds"`
}

// DefaultTiming 3 с на шаг; 30/45/30 с на переход, если у связи нет своей длительности
func DefaultTiming() Timing {
	return Timing{
		MoveSeconds:     3,
		StairSeconds:    30,
		ElevatorSeconds: 45,
		OtherSeconds:    30,
	}
}

// Narrator превращает путь в инструкции. Не хранит состояния между вызовами.
type Narrator struct {
	timing Timing
	logger *logging.Logger
}

// NewNarrator создает нарратор с заданными нормами времени
func NewNarrator(timing Timing) *Narrator {
	return &Narrator{timing: timing, logger: logging.GetNarrationLogger()}
}

var defaultNarrator = NewNarrator(DefaultTiming())

// Narrate озвучивает путь нарратором по умолчанию
func Narrate(path pathfinding.Path, target string) Narration {
	return defaultNarrator.Narrate(path, target)
}

// Fallback фиксированный набор инструкций для пути, который нельзя озвучить
func Fallback() Narration {
	instructions := make([]string, len(FallbackInstructions))
	copy(instructions, FallbackInstructions)
	return Narration{
		Instructions: instructions,
		Steps:        make([]Step, 0),
		Fallback:     true,
	}
}

// Narrate строит инструкции: вступление, объединенные отрезки «вперед»,
// повороты между ними, три фазы на каждый вертикальный переход и прибытие
// последней строкой. Ошибок не возвращает: при сломанном пути - Fallback.
func (n *Narrator) Narrate(path pathfinding.Path, target string) (out Narration) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("❌ сбой построения инструкций: %v", r)
			out = Fallback()
		}
	}()

	if len(path) == 0 {
		n.logger.Warn("⚠️ пустой путь, выдаю резервные инструкции")
		return Fallback()
	}
	if err := path.CheckContinuity(); err != nil {
		n.logger.Warn("⚠️ некорректный путь (%v), выдаю резервные инструкции", err)
		return Fallback()
	}

	b := &builder{}
	last := path[len(path)-1].Pos

	if len(path) == 1 {
		b.add(Step{Action: StepArrived, From: last, To: last}, arrival(target))
		return b.result(0)
	}

	b.add(Step{Action: StepStart, From: path[0].Pos, To: path[0].Pos}, openerText)

	var heading Heading
	hasHeading := false

	for i := 1; i < len(path); {
		node := path[i]

		if node.Action.IsVertical() {
			link := node.Link
			dir := directionOf(path[i-1].Pos, node.Pos)
			texts := verticalTexts(link, dir, node.Pos.Floor)
			b.instructions = append(b.instructions, texts[0], texts[1], texts[2])
			b.steps = append(b.steps, Step{
				Index:  len(b.steps),
				Action: string(node.Action),
				From:   path[i-1].Pos,
				To:     node.Pos,
				Link: &LinkInfo{
					ID:        link.ID,
					Type:      string(link.Type),
					Direction: string(dir),
					FromFloor: path[i-1].Pos.Floor,
					ToFloor:   node.Pos.Floor,
					Steps:     link.Steps,
					Duration:  link.Duration,
				},
				Description: strings.Join(texts[:], ". "),
			})
			hasHeading = false
			i++
			continue
		}

		h, _ := HeadingBetween(path[i-1].Pos, node.Pos)
		if hasHeading && h != heading {
			turn := TurnBetween(heading, h)
			b.add(Step{
				Action:  StepTurn,
				From:    path[i-1].Pos,
				To:      path[i-1].Pos,
				Heading: h.String(),
				Turn:    turn.String(),
			}, turn.Instruction())
		}

		j := i + 1
		for j < len(path) && !path[j].Action.IsVertical() {
			next, _ := HeadingBetween(path[j-1].Pos, path[j].Pos)
			if next != h {
				break
			}
			j++
		}

		run := j - i
		b.add(Step{
			Action:   StepForward,
			From:     path[i-1].Pos,
			To:       path[j-1].Pos,
			Distance: run,
			Heading:  h.String(),
		}, walkText(run))

		heading = h
		hasHeading = true
		i = j
	}

	b.add(Step{Action: StepArrived, From: last, To: last}, arrival(target))
	return b.result(n.Estimate(path))
}

// Estimate оценка времени прохождения пути в секундах
func (n *Narrator) Estimate(path pathfinding.Path) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		node := path[i]
		if !node.Action.IsVertical() {
			total += n.timing.MoveSeconds
			continue
		}
		total += n.linkSeconds(node.Link)
	}
	return total
}

func (n *Narrator) linkSeconds(link *building.VerticalLink) float64 {
	if link != nil && link.Duration > 0 {
		return link.Duration
	}
	if link == nil {
		return n.timing.OtherSeconds
	}
	switch link.Type {
	case building.LinkStair:
		return n.timing.StairSeconds
	case building.LinkElevator:
		return n.timing.ElevatorSeconds
	}
	return n.timing.OtherSeconds
}

func directionOf(from, to pathfinding.Position) building.Direction {
	if to.Floor > from.Floor {
		return building.DirectionUp
	}
	return building.DirectionDown
}

type builder struct {
	instructions []string
	steps        []Step
}

func (b *builder) add(step Step, text string) {
	step.Index = len(b.steps)
	step.Description = text
	b.steps = append(b.steps, step)
	b.instructions = append(b.instructions, text)
}

func (b *builder) result(seconds float64) Narration {
	return Narration{
		Instructions:     b.instructions,
		Steps:            b.steps,
		EstimatedSeconds: seconds,
	}
}
