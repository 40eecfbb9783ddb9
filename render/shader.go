package render

const meshShader = `
struct DrawUniforms {
    view_proj: mat4x4<f32>,
    model: mat4x4<f32>,
    base_color: vec4<f32>,
    light_dir: vec4<f32>,
    light_color: vec4<f32>,
    ambient: vec4<f32>,
};

@group(0) @binding(0) var<uniform> u: DrawUniforms;
@group(0) @binding(1) var base_tex: texture_2d<f32>;
@group(0) @binding(2) var base_sampler: sampler;

struct VsOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) normal: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) normal: vec3<f32>, @location(2) uv: vec2<f32>) -> VsOut {
    var out: VsOut;
    out.clip = u.view_proj * u.model * vec4<f32>(pos, 1.0);
    out.normal = (u.model * vec4<f32>(normal, 0.0)).xyz;
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VsOut) -> @location(0) vec4<f32> {
    let albedo = textureSample(base_tex, base_sampler, in.uv) * u.base_color;
    let n = normalize(in.normal);
    let diffuse = max(dot(n, -u.light_dir.xyz), 0.0) * u.light_dir.w;
    let lit = albedo.rgb * (u.ambient.rgb + u.light_color.rgb * diffuse);
    return vec4<f32>(lit, albedo.a);
}
`
