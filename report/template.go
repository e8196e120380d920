package report

const reportTemplate = `<!DOCTYPE html>
<html>
    <head>
{{ $title := index . "title" }}
	<meta charset="utf-8">
	<title>{{ $title }}</title>
		<script src="{{ index . "JQuery" }}"></script>
		<script src="{{ index . "ECharts" }}"></script>
		<style type="text/css">
body {
	font-family: Lucida Console, monospace;
}
#chart {
    width: 98%;
    height: {{ index . "height" }}px;
    margin: auto;
}
table.stats {
	border-collapse: collapse;
	margin: 8px;
}
table.stats td, table.stats th {
	border: 1px solid #aaa;
	padding: 2px 6px;
}
.tt {
    border: 2px solid #aaa;
    padding: 2px;
}
		</style>
    </head>
    <body data-report-id="{{ index . "id" }}">
<span class="top-help">
<b>{{ $title }}</b>: coverage of {{ index . "nSamples" }} sample(s) over <b>{{ index . "refName" }}</b> ({{ index . "refLength" }} bp).
Created with wgscovplot version {{ index . "version" }}.
{{ if index . "amplicon" }}Amplicon depth is shown; odd pools are violet and even pools skyblue.{{ end }}
</span>

<section>
	<span class="tt">Coverage statistics (low coverage is depth &lt; {{ index . "low" }}X)</span>
	<table class="stats">
	<tr>{{ range $h := index . "header" }}<th>{{ $h }}</th>{{ end }}</tr>
	{{ range $row := index . "rows" }}
	<tr>{{ range $c := $row }}<td>{{ $c }}</td>{{ end }}</tr>
	{{ end }}
	</table>
</section>
<hr/>

<div id="chart"></div>

<hr/>
<h5>Acknowledgements</h5>
<ul>
	<li>interactive plots use <a href="https://echarts.apache.org/">Apache ECharts</a></li>
	<li>fasta parsing with <a href="https://github.com/biogo/biogo">biogo</a> and <a href="https://github.com/brentp/faidx">faidx</a></li>
</ul>
    </body>
    <script>
	var samples = {{ index . "samples" }};
	var sampleIndex = {{ index . "sampleIdx" }};
	var depths = {{ index . "depths" }};
	var variants = {{ index . "variants" }};
	var stats = {{ index . "rows" }};
	var amplicons = {{ index . "amplicons" }};
	var geneFeatures = {{ index . "features" }};
	var geneProps = {{ index . "properties" }};
	var refSeq = {{ index . "refSeq" }};
	var refLength = {{ index . "refLength" }};
	var showGenes = geneFeatures.length > 0;

	var grids = [], xAxes = [], yAxes = [], series = [];
	var nGrids = samples.length + (showGenes ? 1 : 0);
	var gridHeight = Math.floor(80 / nGrids);

	samples.forEach(function(name, i) {
		grids.push({left: "8%", right: "8%", top: (5 + i * gridHeight) + "%", height: (gridHeight - 4) + "%"});
		xAxes.push({type: "value", gridIndex: i, min: 1, max: refLength, axisLabel: {show: i == nGrids - 1}});
		yAxes.push({type: "log", gridIndex: i, name: sampleIndex[i], min: 1, nameLocation: "middle", nameGap: 40});
		var xy = depths[i].map(function(d, j) { return [j + 1, d]; });
		series.push({type: "line", name: name, xAxisIndex: i, yAxisIndex: i, data: xy, symbol: "none",
			lineStyle: {width: 0.5}, areaStyle: {}, sampling: "lttb"});
		var vs = [];
		Object.keys(variants[i]).forEach(function(pos) {
			var a = variants[i][pos];
			vs.push({value: [+pos, Math.max(depths[i][pos - 1], 1)], ref: a[0], alt: a[1],
				nt: refSeq.charAt(pos - 1)});
		});
		series.push({type: "scatter", name: name + " variants", xAxisIndex: i, yAxisIndex: i, data: vs,
			symbolSize: 6, tooltip: {formatter: function(p) {
				return sampleIndex[i] + " " + p.data.value[0] + " " + p.data.ref + ">" + p.data.alt +
					" (" + stats[i][stats[i].length - 1] + ")";
			}}});
		if (amplicons !== null && amplicons[i] !== null) {
			series.push({type: "custom", name: name + " amplicons", xAxisIndex: i, yAxisIndex: i,
				data: amplicons[i].map(function(a) { return {value: [a.start, a.end, a.depth], name: a.name, color: a.color}; }),
				renderItem: function(params, api) {
					var s = api.coord([api.value(0), api.value(2)]);
					var e = api.coord([api.value(1), 1]);
					return {type: "rect", shape: {x: s[0], y: s[1], width: e[0] - s[0], height: e[1] - s[1]},
						style: {fill: params.data ? params.data.color : api.visual("color"), opacity: 0.4}};
				}});
		}
	});

	if (showGenes) {
		var gi = samples.length;
		grids.push({left: "8%", right: "8%", top: (5 + gi * gridHeight) + "%", height: geneProps.grid_height});
		xAxes.push({type: "value", gridIndex: gi, min: 1, max: refLength});
		yAxes.push({type: "value", gridIndex: gi, max: geneProps.max_grid_height, show: false});
		series.push({type: "custom", name: "Gene Feature", xAxisIndex: gi, yAxisIndex: gi, data: geneFeatures,
			renderItem: function(params, api) {
				var start = api.coord([api.value(1), api.value(3)]);
				var end = api.coord([api.value(2), api.value(3)]);
				var h = geneProps.rec_items_height;
				return {type: "rect", shape: {x: start[0], y: start[1] - h, width: end[0] - start[0], height: h},
					style: api.style()};
			}});
	}

	var chart = echarts.init(document.getElementById("chart"));
	chart.setOption({
		animation: false,
		tooltip: {trigger: "item"},
		dataZoom: [{type: "inside", xAxisIndex: xAxes.map(function(_, i) { return i; })},
			{type: "slider", xAxisIndex: xAxes.map(function(_, i) { return i; })}],
		grid: grids, xAxis: xAxes, yAxis: yAxes, series: series
	});
	$(window).on("resize", function() { chart.resize(); });
    </script>
</html>
`
