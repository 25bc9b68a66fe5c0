package controller

import (
	"html/template"
	"stem_dashboard/internal/model"
)

var funcMap = template.FuncMap{
	"arrow": func(expanded bool) string {
		if expanded {
			return model.ArrowExpanded
		}
		return model.ArrowCollapsed
	},
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(funcMap).Parse(tmplDashboard))

const tmplDashboard = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.View.Title}}</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:sans-serif;background:#0d1117;color:#c9d1d9;font-size:13px;line-height:1.5}
nav{background:#161b22;border-bottom:1px solid #30363d;padding:8px 16px;display:flex;gap:16px;align-items:center}
nav .brand{color:#f0f6fc;font-weight:700;font-size:15px}
nav .ranges button{background:#21262d;color:#8b949e;border:1px solid #30363d;border-radius:4px;padding:2px 10px;cursor:pointer}
nav .ranges button.active{background:#1f6feb;border-color:#1f6feb;color:#fff}
main{display:flex;gap:16px;padding:16px}
#course-list{min-width:220px}
#course-list ul{list-style:none}
#course-list li.subject>.row{cursor:pointer;padding:2px 0}
#course-list ul.courses{margin-left:20px}
#error{background:#3d1d1d;border:1px solid #f87171;color:#f87171;padding:8px 12px;margin:8px 16px;border-radius:4px}
.charts{flex:1}
.charts img{display:block;margin-bottom:16px;max-width:100%}
#heatmap-parent{width:100%}
#heatmap{background:#161b22;border:1px solid #30363d;border-radius:6px}
</style>
</head>
<body>
<nav>
  <span class="brand">STEM Center Analytics</span>
  <span class="ranges">
    <button data-range="day" {{if .View.Pickers.Day}}class="active"{{end}}>Day</button>
    <button data-range="week" {{if .View.Pickers.Week}}class="active"{{end}}>Week</button>
    <button data-range="quarter" {{if .View.Pickers.Quarter}}class="active"{{end}}>Quarter</button>
  </span>
  <input id="day-picker" type="date" {{if not .View.Pickers.Day}}hidden{{end}}>
  <input id="week-picker" type="text" placeholder="Fall 2013 - Week 1" {{if not .View.Pickers.Week}}hidden{{end}}>
  <input id="quarter-picker" type="text" placeholder="Fall 2013" value="{{if .View.Pickers.Quarter}}{{.View.Selection.Value}}{{end}}" {{if not .View.Pickers.Quarter}}hidden{{end}}>
</nav>
<div id="error" {{if not .View.Banner.Visible}}hidden{{end}}>{{.View.Banner.Text}}</div>
<main>
  <div id="course-list">
    <ul>
    {{range .Nodes}}
      <li class="subject" data-subject="{{.Subject}}">
        <div class="row"><span class="arrow">{{arrow .Expanded}}</span> <input type="checkbox" {{if .Checked}}checked{{end}}> {{.Subject}}</div>
        <ul class="courses" {{if not .Expanded}}hidden{{end}}>
        {{range .Children}}
          <li><label><input type="checkbox" data-course="{{.Course}}" {{if .Checked}}checked{{end}}> {{.Course}}</label></li>
        {{end}}
        </ul>
      </li>
    {{end}}
    </ul>
  </div>
  <div class="charts">
    <img id="demand-chart" alt="demand" src="/api/charts/demand.svg?rev={{.View.Revision}}">
    <img id="wait-time-chart" alt="wait time" src="/api/charts/wait_time.svg?rev={{.View.Revision}}">
    <div id="heatmap-parent"><div id="heatmap" style="width:{{.View.Heatmap.Width}}px;height:{{.View.Heatmap.Height}}px"></div></div>
  </div>
</main>
<script>
(function(){
  function post(url, body){
    return fetch(url,{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify(body)});
  }
  var pickers={day:'day-picker',week:'week-picker',quarter:'quarter-picker'};
  document.querySelectorAll('nav .ranges button').forEach(function(b){
    b.addEventListener('click',function(){
      Object.keys(pickers).forEach(function(k){document.getElementById(pickers[k]).hidden=(k!==b.dataset.range);});
    });
  });
  Object.keys(pickers).forEach(function(k){
    var el=document.getElementById(pickers[k]);
    el.addEventListener('change',function(){
      var label=k==='day'&&el.valueAsDate?el.valueAsDate.toDateString():el.value;
      post('/api/range/'+k,{value:el.value,label:label});
    });
  });
  document.querySelectorAll('#course-list li.subject').forEach(function(li){
    li.querySelector('.row').addEventListener('click',function(e){
      var target=(e.target.tagName==='INPUT'&&e.target.type==='checkbox')?'checkbox':'row';
      post('/api/courses/click',{subject:li.dataset.subject,target:target}).then(function(){
        if(target==='row'){
          var ul=li.querySelector('ul.courses');ul.hidden=!ul.hidden;
          li.querySelector('.arrow').textContent=ul.hidden?'▶':'▼';
        }
      });
    });
    li.querySelectorAll('ul.courses input').forEach(function(cb){
      cb.addEventListener('click',function(){post('/api/courses/click',{subject:li.dataset.subject,course:cb.dataset.course,target:'checkbox'});});
    });
  });
  function layout(){post('/api/layout',{parent_width:document.getElementById('heatmap-parent').clientWidth});}
  window.addEventListener('resize',layout);layout();
  var ws=new WebSocket((location.protocol==='https:'?'wss://':'ws://')+location.host+'/api/ws');
  document.addEventListener('visibilitychange',function(){
    if(!document.hidden&&ws.readyState===WebSocket.OPEN)ws.send(JSON.stringify({type:'REFRESH'}));
  });
  ws.onmessage=function(ev){
    var msg=JSON.parse(ev.data);if(msg.type!=='VIEW_STATE')return;var v=msg.data;
    document.title=v.title;
    Object.keys(pickers).forEach(function(k){document.getElementById(pickers[k]).hidden=!v.pickers[k];});
    document.querySelectorAll('nav .ranges button').forEach(function(b){b.classList.toggle('active',!!v.pickers[b.dataset.range]);});
    if(v.pickers[v.selection.kind]){var active=document.getElementById(pickers[v.selection.kind]);if(document.activeElement!==active&&active.type!=='date')active.value=v.selection.value;}
    var banner=document.getElementById('error');banner.textContent=v.banner.text;banner.hidden=!v.banner.visible;
    document.getElementById('demand-chart').src='/api/charts/demand.svg?rev='+v.revision;
    document.getElementById('wait-time-chart').src='/api/charts/wait_time.svg?rev='+v.revision;
    var hm=document.getElementById('heatmap');hm.style.width=v.heatmap.width+'px';hm.style.height=v.heatmap.height+'px';
  };
})();
</script>
</body>
</html>
`
