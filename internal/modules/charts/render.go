package charts

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/seriesplot/internal/domain"
)

// SeriesInput is one primary series to put on the plot
type SeriesInput struct {
	ID              string
	Data            *domain.TimeseriesData
	Style           domain.StyleProperties
	Metadata        domain.TimeseriesMetadata
	ReferenceStyles map[string]domain.StyleProperties
}

// ReferenceStyle returns the style of a reference series, defaulting to line
func (in SeriesInput) ReferenceStyle(referenceID string) domain.StyleProperties {
	if s, ok := in.ReferenceStyles[referenceID]; ok {
		return s
	}
	return domain.DefaultStyle()
}

// RenderResult describes the slots of one render pass in index order
type RenderResult struct {
	RenderID       string      `json:"renderId" msgpack:"renderId"`
	Slots          []ChartSlot `json:"slots" msgpack:"slots"`
	PrimaryCount   int         `json:"primaryCount" msgpack:"primaryCount"`
	ReferenceCount int         `json:"referenceCount" msgpack:"referenceCount"`
}

// Orchestrator puts several independently styled series on one plot
type Orchestrator struct {
	builder   *SeriesBuilder
	renderers RendererFactory
	timespan  *domain.Timespan
	log       zerolog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithBucketer sets the bucketer used to build series
func WithBucketer(b *Bucketer) Option {
	return func(o *Orchestrator) {
		o.builder = NewSeriesBuilder(b)
	}
}

// WithTimespan sets the requested span used for range labels
func WithTimespan(span *domain.Timespan) Option {
	return func(o *Orchestrator) {
		o.timespan = span
	}
}

// NewOrchestrator creates an orchestrator drawing through renderers
func NewOrchestrator(renderers RendererFactory, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		builder:   NewSeriesBuilder(nil),
		renderers: renderers,
		log:       log.With().Str("service", "charts").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type plannedReference struct {
	id    string
	data  *domain.TimeseriesData
	style domain.StyleProperties
	slot  ChartSlot
}

type plannedSeries struct {
	input      SeriesInput
	slot       ChartSlot
	references []plannedReference
}

// Render registers every series and its references on plot.
// All indices are assigned before the first registration.
func (o *Orchestrator) Render(inputs []SeriesInput, plot Plot) (*RenderResult, error) {
	planned, alloc, err := o.plan(inputs)
	if err != nil {
		return nil, err
	}

	result := &RenderResult{
		RenderID:     uuid.NewString(),
		Slots:        make([]ChartSlot, alloc.Count()),
		PrimaryCount: alloc.PrimaryCount(),
	}

	for _, p := range planned {
		o.register(plot, p)
		result.Slots[p.slot.Index] = p.slot
		for _, ref := range p.references {
			result.Slots[ref.slot.Index] = ref.slot
			result.ReferenceCount++
		}
	}

	o.log.Debug().
		Str("render_id", result.RenderID).
		Int("primary", result.PrimaryCount).
		Int("references", result.ReferenceCount).
		Msg("Rendered series onto plot")

	return result, nil
}

// plan assigns all slots: primaries first, then each primary's references in
// order with one counter for the whole pass.
func (o *Orchestrator) plan(inputs []SeriesInput) ([]plannedSeries, *IndexAllocator, error) {
	requests := make([]SlotRequest, len(inputs))
	for i, in := range inputs {
		if in.Data == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingTimeseries, in.ID)
		}
		requests[i] = SlotRequest{
			SeriesID: in.ID,
			ChartID:  ChartID(in.Metadata, "", RangeLabel(in.Metadata, o.timespan)),
		}
	}

	alloc := NewIndexAllocator()
	slots, err := alloc.Allocate(requests)
	if err != nil {
		return nil, nil, err
	}

	planned := make([]plannedSeries, len(inputs))
	for i, in := range inputs {
		p := plannedSeries{input: in, slot: slots[in.ID]}
		if in.Data.HasReferenceValues() {
			rangeLabel := RangeLabel(in.Metadata, o.timespan)
			for refID, refData := range in.Data.Metadata.ReferenceValues.All() {
				chartID := ChartID(in.Metadata, ReferenceLabel(in.Metadata, refID), rangeLabel)
				slot, err := alloc.AllocateReference(p.slot, refID, chartID)
				if err != nil {
					return nil, nil, err
				}
				if refData == nil {
					refData = &domain.TimeseriesData{}
				}
				p.references = append(p.references, plannedReference{
					id:    refID,
					data:  refData,
					style: in.ReferenceStyle(refID),
					slot:  slot,
				})
			}
		}
		planned[i] = p
	}

	return planned, alloc, nil
}

// register adds a primary series and its references. The primary's axis
// spans the primary and every reference mapped onto it.
func (o *Orchestrator) register(plot Plot, p plannedSeries) {
	index := p.slot.Index
	style := o.resolve(p.slot, p.input.Style)
	dataset := NewDataset(p.slot.ChartID, o.builder.Build(p.slot.ChartID, p.input.Data.Values, style))

	refStyles := make([]Style, len(p.references))
	refDatasets := make([]*Dataset, len(p.references))
	for i, ref := range p.references {
		refStyles[i] = o.resolve(ref.slot, ref.style)
		refDatasets[i] = NewDataset(ref.slot.ChartID, o.builder.Build(ref.slot.ChartID, ref.data.Values, refStyles[i]))
	}

	axis := NewRangeAxis(p.slot.AxisIndex, AxisLabel(p.input.Metadata), append([]*Dataset{dataset}, refDatasets...)...)

	plot.SetDataset(index, dataset)
	plot.SetRangeAxis(p.slot.AxisIndex, axis)
	plot.MapDatasetToRangeAxis(index, p.slot.AxisIndex)
	o.attachRenderer(plot, p.slot, style)

	for i, ref := range p.references {
		o.registerReference(plot, p.slot, ref.slot, refDatasets[i], refStyles[i])
	}
}

// registerReference adds the dataset and renderer of a reference series.
// It draws against the parent's axis and gets no axis of its own.
func (o *Orchestrator) registerReference(plot Plot, parent, slot ChartSlot, dataset *Dataset, style Style) {
	plot.SetDataset(slot.Index, dataset)
	plot.MapDatasetToRangeAxis(slot.Index, parent.AxisIndex)
	o.attachRenderer(plot, slot, style)
}

func (o *Orchestrator) attachRenderer(plot Plot, slot ChartSlot, style Style) {
	if o.renderers == nil {
		return
	}
	renderer := o.renderers.CreateRenderer(style)
	if renderer == nil {
		return
	}
	plot.SetRenderer(slot.Index, renderer)
	renderer.SetColorForSeriesAt(slot.ColorIndex)
}

func (o *Orchestrator) resolve(slot ChartSlot, props domain.StyleProperties) Style {
	style := ResolveStyle(props)
	if style.Kind() == KindBar {
		if v, ok := unrecognizedInterval(props); ok {
			o.log.Debug().
				Str("chart_id", slot.ChartID).
				Str("interval", v).
				Msg("Unrecognized interval, aggregating by week")
		}
	}
	return style
}
